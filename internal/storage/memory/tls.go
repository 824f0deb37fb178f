// Package memory keeps the server certificate in process memory. Useful for
// development and tests; the certificate must be stored at runtime.
package memory

import (
	"context"
	"crypto/tls"
	"os"
	"sync"
)

type TLSProvider struct {
	mu   sync.RWMutex
	cert *tls.Certificate
}

func NewTLSProvider() *TLSProvider {
	return &TLSProvider{}
}

func (p *TLSProvider) GetCertificate(ctx context.Context) (*tls.Certificate, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cert == nil {
		return nil, os.ErrNotExist
	}
	return p.cert, nil
}

func (p *TLSProvider) Store(ctx context.Context, certPEM, keyPEM []byte) error {
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.cert = &cert
	p.mu.Unlock()
	return nil
}
