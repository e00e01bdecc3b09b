package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
	"github.com/aussiebroadwan/qaboard/internal/qa/store"
	"github.com/aussiebroadwan/qaboard/pkg/cryptox"
	"github.com/aussiebroadwan/qaboard/pkg/slogx"
)

// DefaultOTPTTLMinutes applies when an OTP is issued without a positive ttl.
const DefaultOTPTTLMinutes = 30

// OTPService manages the temporary passwords administrators hand out.
type OTPService struct {
	Store store.Store
	Now   func() time.Time

	// DefaultTTLMinutes replaces non-positive ttls; zero means
	// DefaultOTPTTLMinutes.
	DefaultTTLMinutes int
}

// Issue sets a one-time password for username, replacing any previous one.
// A blank code is replaced by a random one. The plain code is returned so
// the administrator can pass it on; only its fingerprint is stored.
func (s *OTPService) Issue(ctx context.Context, username, code string, ttlMinutes int) (string, bool, error) {
	log := slogx.FromContext(ctx)

	code = strings.TrimSpace(code)
	if code == "" {
		var err error
		if code, err = cryptox.GenerateOTP(); err != nil {
			log.Error("failed to generate one-time password", slog.Any("error", err))
			return "", false, err
		}
	}

	if ttlMinutes <= 0 {
		ttlMinutes = s.DefaultTTLMinutes
		if ttlMinutes <= 0 {
			ttlMinutes = DefaultOTPTTLMinutes
		}
	}
	expiresAt := clock(s.Now).Add(time.Duration(ttlMinutes) * time.Minute)

	ok, err := found(s.Store.Users().SetOTP(ctx, strings.TrimSpace(username),
		cryptox.FingerprintToken(code), &expiresAt))
	if err != nil {
		log.Error("failed to store one-time password", slog.String("username", username), slog.Any("error", err))
		return "", false, err
	}
	if !ok {
		log.Warn("one-time password for unknown user", slog.String("username", username))
		return "", false, nil
	}

	log.Info("one-time password issued",
		slog.String("username", username),
		slog.Time("expires_at", expiresAt),
	)
	return code, true, nil
}

// Check reports whether code is the live one-time password of username.
func (s *OTPService) Check(ctx context.Context, username, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return false, nil
	}
	return s.Store.Users().CheckOTP(ctx, strings.TrimSpace(username),
		cryptox.FingerprintToken(code), clock(s.Now))
}

// Redeem replaces the password of username and consumes its one-time
// password in one transaction. It reports false when the user has no live
// one-time password.
func (s *OTPService) Redeem(ctx context.Context, username, newPassword string) (bool, error) {
	return s.redeem(ctx, username, "", newPassword)
}

// RedeemRef is Redeem for a session opened with a one-time password. It
// also reports false when the live one-time password is not the one ref
// points at, as happens after an admin issues a fresh code.
func (s *OTPService) RedeemRef(ctx context.Context, username, ref, newPassword string) (bool, error) {
	if ref == "" {
		return false, nil
	}
	return s.redeem(ctx, username, ref, newPassword)
}

func (s *OTPService) redeem(ctx context.Context, username, ref, newPassword string) (bool, error) {
	log := slogx.FromContext(ctx)

	if err := domain.ValidatePassword(newPassword); err != nil {
		return false, err
	}
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return false, err
	}

	now := clock(s.Now)
	redeemed := false
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, ok, err := findUser(ctx, tx, username)
		if err != nil || !ok {
			return err
		}
		if !u.OTP.Live(now) {
			log.Warn("redeem without a live one-time password", slog.String("username", u.Username))
			return nil
		}
		if ref != "" && OTPRef(u.OTP.CodeHash) != ref {
			log.Warn("redeem with a superseded one-time password", slog.String("username", u.Username))
			return nil
		}
		if err := tx.Users().UpdatePasswordHash(ctx, u.Username, hash); err != nil {
			return err
		}
		if err := tx.Users().ConsumeOTP(ctx, u.Username); err != nil {
			return err
		}
		redeemed = true
		return nil
	})
	if err != nil {
		log.Error("failed to redeem one-time password", slog.String("username", username), slog.Any("error", err))
		return false, err
	}
	if redeemed {
		log.Info("one-time password redeemed", slog.String("username", username))
	}
	return redeemed, nil
}
