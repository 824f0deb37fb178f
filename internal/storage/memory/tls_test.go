package memory

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineserve/lineserve/internal/testkit"
)

func TestGetCertificate_EmptyProvider(t *testing.T) {
	p := NewTLSProvider()

	_, err := p.GetCertificate(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestStoreAndGetCertificate(t *testing.T) {
	p := NewTLSProvider()

	certPEM, keyPEM := testkit.GenerateSelfSignedCert(t)
	require.NoError(t, p.Store(context.Background(), certPEM, keyPEM))

	cert, err := p.GetCertificate(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, cert.Certificate)
}

func TestStore_RejectsInvalidPEM(t *testing.T) {
	p := NewTLSProvider()

	err := p.Store(context.Background(), []byte("not a cert"), []byte("not a key"))
	require.Error(t, err)

	_, err = p.GetCertificate(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
