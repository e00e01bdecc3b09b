package cryptox_test

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/qaboard/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateEd25519Key(t *testing.T) {
	pemBytes, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	block, _ := pem.Decode(pemBytes)
	require.NotNil(t, block)
	require.Equal(t, "PRIVATE KEY", block.Type)

	keyInterface, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)

	key, ok := keyInterface.(ed25519.PrivateKey)
	require.True(t, ok)
	require.Equal(t, ed25519.PrivateKeySize, len(key))
}

func TestLoadOrCreateEd25519Key(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "session.pem")

	first, err := cryptox.LoadOrCreateEd25519Key(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Second call reads the persisted key back.
	second, err := cryptox.LoadOrCreateEd25519Key(path)
	require.NoError(t, err)
	require.Equal(t, first, second)

	_, err = cryptox.LoadOrCreateEd25519Key("")
	require.Error(t, err)
}
