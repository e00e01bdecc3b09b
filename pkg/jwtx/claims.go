package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a session token when none is configured.
const DefaultSessionTTL = 15 * time.Minute

// Authentication methods recorded in the amr claim.
const (
	AMRPassword = "pwd"
	AMROTP      = "otp"
)

// Claims are the session-token claims.
type Claims struct {
	jwt.RegisteredClaims

	// Session ID
	SID string `json:"sid,omitempty"`

	// Authentication Methods Reference, ["pwd"] or ["otp"]. An "otp"
	// session exists only to replace the temporary password.
	AMR []string `json:"amr,omitempty"`

	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`

	// OTPRef identifies the one-time password an "otp" session was opened
	// with. Redeeming through the session only succeeds while that exact
	// code is still the live one.
	OTPRef string `json:"otp_ref,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for an authenticated user.
func NewSessionClaims(
	subject, sid, username, role string,
	amr []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:      sid,
		AMR:      amr,
		Username: username,
		Role:     role,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// HasAMR reports whether the session was established with method.
func (c *Claims) HasAMR(method string) bool {
	return slices.Contains(c.AMR, method)
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
