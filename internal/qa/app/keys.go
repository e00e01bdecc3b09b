package app

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/qaboard/pkg/cryptox"
	"github.com/aussiebroadwan/qaboard/pkg/jwtx"
)

// initKeys loads the session signing key, creating it on first start, and
// publishes its public half in a key set for verification.
func initKeys(cfg Config, logger *slog.Logger) (*jwtx.EdDSASigner, *jwtx.KeySet, error) {
	pemKey, err := cryptox.LoadOrCreateEd25519Key(cfg.SigningKeyFile)
	if err != nil {
		return nil, nil, err
	}

	signer, err := jwtx.NewSignerEdDSA(keyID(pemKey), pemKey)
	if err != nil {
		return nil, nil, fmt.Errorf("load signing key %s: %w", cfg.SigningKeyFile, err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, err
	}

	logger.Info("session signing key loaded", "kid", signer.KID(), "alg", signer.Alg())
	return signer, keys, nil
}

// keyID derives a stable kid from the key material so tokens keep
// verifying across restarts.
func keyID(pemKey []byte) string {
	sum := sha256.Sum256(pemKey)
	return base64.RawURLEncoding.EncodeToString(sum[:8])
}
