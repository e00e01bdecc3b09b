package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// Token size constants (in bytes before encoding).
const (
	TokenSize128 = 16
	TokenSize256 = 32
)

// InvitationCodeLength is the number of characters in a minted invitation code.
const InvitationCodeLength = 10

// GenerateToken creates a random token of size bytes, base64url encoded
// without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token,
// base64url encoded (43 chars). Short-lived secrets such as one-time
// passwords are stored as fingerprints only.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateOTP returns an eight digit one-time password derived from a fresh
// random HOTP secret and counter.
func GenerateOTP() (string, error) {
	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("failed to generate otp secret: %w", err)
	}
	var counter [8]byte
	if _, err := rand.Read(counter[:]); err != nil {
		return "", fmt.Errorf("failed to generate otp counter: %w", err)
	}

	code, err := hotp.GenerateCodeCustom(
		base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret),
		binary.BigEndian.Uint64(counter[:]),
		hotp.ValidateOpts{
			Digits:    otp.DigitsEight,
			Algorithm: otp.AlgorithmSHA1,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return code, nil
}

// GenerateInvitationCode returns a short upper-case hex code cut from a
// random UUID.
func GenerateInvitationCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:InvitationCodeLength])
}
