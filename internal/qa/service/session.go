package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/qaboard/pkg/idx"
	"github.com/aussiebroadwan/qaboard/pkg/jwtx"
	"github.com/aussiebroadwan/qaboard/pkg/slogx"
)

// Session is a signed bearer token handed to an authenticated caller.
type Session struct {
	Token             string
	ExpiresAt         time.Time
	MustResetPassword bool
}

type SessionService struct {
	Signer jwtx.Signer
	Issuer string

	// TTL defaults to jwtx.DefaultSessionTTL.
	TTL time.Duration
	Now func() time.Time
}

// Issue signs a session for an authenticated user. Sessions opened with a
// one-time password carry amr "otp" and can only be used to set a new
// password.
func (s *SessionService) Issue(ctx context.Context, res AuthResult) (Session, error) {
	log := slogx.FromContext(ctx)

	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	amr := jwtx.AMRPassword
	if res.MustResetPassword {
		amr = jwtx.AMROTP
	}

	now := clock(s.Now)
	claims := jwtx.NewSessionClaims(
		res.User.ID,
		idx.NewAt(now).String(),
		res.User.Username,
		res.User.Role.String(),
		[]string{amr},
		ttl,
		s.Issuer,
		now,
	)
	if res.MustResetPassword {
		claims.OTPRef = res.OTPRef
	}

	token, err := s.Signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign session", slog.Any("error", err))
		return Session{}, err
	}

	log.Info("session issued",
		slog.String("user_id", res.User.ID),
		slog.String("sid", claims.SID),
		slog.String("amr", amr),
	)
	return Session{
		Token:             token,
		ExpiresAt:         claims.ExpiresAt.Time,
		MustResetPassword: res.MustResetPassword,
	}, nil
}
