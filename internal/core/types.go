package core

import (
	"context"
	"crypto/tls"
	"net"
)

// ConnectionHandler owns the entire lifecycle of one accepted connection:
// optional TLS upgrade, query read, search, response, close. Implementations
// must close the connection on every exit path and must never panic into the
// accept loop.
type ConnectionHandler interface {
	HandleConnection(conn net.Conn)
}

// TLSProvider defines how to retrieve the server certificate.
// It abstracts away the storage mechanism (file, Kubernetes Secret, memory).
type TLSProvider interface {
	GetCertificate(ctx context.Context) (*tls.Certificate, error)
	Store(ctx context.Context, certPEM, keyPEM []byte) error
}
