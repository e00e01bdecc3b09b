package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
	"github.com/aussiebroadwan/qaboard/internal/qa/store"
	"github.com/aussiebroadwan/qaboard/pkg/cryptox"
	"github.com/aussiebroadwan/qaboard/pkg/idx"
	"github.com/aussiebroadwan/qaboard/pkg/slogx"
)

type AccountService struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

// AuthResult is the outcome of a successful Authenticate.
type AuthResult struct {
	User domain.User

	// MustResetPassword is set when the caller signed in with a one-time
	// password and has to choose a permanent one before doing anything else.
	MustResetPassword bool

	// OTPRef is set alongside MustResetPassword. See OTPRef.
	OTPRef string
}

// OTPRef derives the reference a session keeps for the one-time password
// stored under codeHash.
func OTPRef(codeHash string) string {
	return cryptox.FingerprintToken(codeHash)
}

// Register creates an account from the public sign-up form. The first
// account in an empty store becomes the administrator and needs no
// invitation; every later account must redeem one, and takes the role the
// invitation grants.
func (s *AccountService) Register(ctx context.Context, nu domain.NewUser) (domain.User, error) {
	return s.create(ctx, nu, true)
}

// CreateUser creates an account on behalf of an administrator. No
// invitation is needed and the requested role is used as given.
func (s *AccountService) CreateUser(ctx context.Context, nu domain.NewUser) (domain.User, error) {
	return s.create(ctx, nu, false)
}

func (s *AccountService) create(ctx context.Context, nu domain.NewUser, requireInvite bool) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate the form.
	username, err := domain.ValidateUsername(nu.Username)
	if err != nil {
		return domain.User{}, err
	}
	if err := domain.ValidatePassword(nu.Password); err != nil {
		return domain.User{}, err
	}
	email, err := domain.ValidateEmail(nu.Email)
	if err != nil {
		return domain.User{}, err
	}
	role := nu.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return domain.User{}, domain.ErrInvalidRole
	}

	hash, err := cryptox.HashPassword(nu.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	now := clock(s.Now)
	user := domain.User{
		ID:            idx.NewAt(now).String(),
		Username:      username,
		Email:         email,
		MiddleInitial: domain.NormalizeMiddleInitial(nu.MiddleInitial),
		PasswordHash:  hash,
		Role:          role,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// 2. Bootstrap check, invitation redemption and insert share one
	// transaction so a failed insert leaves the invitation unused.
	var invitation string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		count, err := tx.Users().Count(ctx)
		if err != nil {
			return err
		}

		switch {
		case count == 0:
			user.Role = domain.RoleAdmin
		case requireInvite:
			invitation = strings.ToUpper(strings.TrimSpace(nu.InvitationCode))
			r, err := redeemInvitation(ctx, tx, invitation, username, now)
			if err != nil {
				return err
			}
			user.Role = r
		}

		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domain.ErrDuplicateUsername
			}
			return err
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateUsername):
			log.Warn("username already taken", slog.String("username", username))
		case errors.Is(err, domain.ErrInvalidInvitationCode):
			log.Warn("registration with unusable invitation code",
				slog.String("username", username),
				slog.String("code", invitation),
			)
		default:
			log.Error("failed to create user",
				slog.String("username", username),
				slog.Any("error", err),
			)
		}
		return domain.User{}, err
	}

	log.Info("user created",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", user.Role.String()),
		slog.Bool("self_registered", requireInvite),
	)
	return user, nil
}

// redeemInvitation consumes code for username and returns the role it grants.
func redeemInvitation(ctx context.Context, tx store.Tx, code, username string, now time.Time) (domain.Role, error) {
	if code == "" {
		return "", domain.ErrInvalidInvitationCode
	}
	inv, err := tx.Invitations().Get(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domain.ErrInvalidInvitationCode
		}
		return "", err
	}
	ok, err := tx.Invitations().Redeem(ctx, code, username, now)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrInvalidInvitationCode
	}
	if !inv.Role.Valid() || inv.Role == domain.RoleAdmin {
		return domain.RoleUser, nil
	}
	return inv.Role, nil
}

// DeleteUser removes an account. It reports false when the user does not
// exist or is the only remaining administrator.
func (s *AccountService) DeleteUser(ctx context.Context, username string) (bool, error) {
	log := slogx.FromContext(ctx)

	deleted := false
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, ok, err := s.guardLastAdmin(ctx, tx, username)
		if err != nil || !ok {
			return err
		}
		if err := tx.Users().Delete(ctx, u.Username); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		log.Error("failed to delete user", slog.String("username", username), slog.Any("error", err))
		return false, err
	}
	if deleted {
		log.Info("user deleted", slog.String("username", username))
	}
	return deleted, nil
}

// ChangeRole assigns role to username. Demoting the only administrator
// reports false and leaves the account unchanged.
func (s *AccountService) ChangeRole(ctx context.Context, username string, role domain.Role) (bool, error) {
	log := slogx.FromContext(ctx)

	if !role.Valid() {
		return false, domain.ErrInvalidRole
	}

	changed := false
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var (
			u   domain.User
			ok  bool
			err error
		)
		if role == domain.RoleAdmin {
			u, ok, err = findUser(ctx, tx, username)
		} else {
			u, ok, err = s.guardLastAdmin(ctx, tx, username)
		}
		if err != nil || !ok {
			return err
		}
		if err := tx.Users().UpdateRole(ctx, u.Username, role); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		log.Error("failed to change role", slog.String("username", username), slog.Any("error", err))
		return false, err
	}
	if changed {
		log.Info("role changed", slog.String("username", username), slog.String("role", role.String()))
	}
	return changed, nil
}

// guardLastAdmin loads username and reports false when it is missing or is
// the sole administrator.
func (s *AccountService) guardLastAdmin(ctx context.Context, tx store.Tx, username string) (domain.User, bool, error) {
	u, ok, err := findUser(ctx, tx, username)
	if err != nil || !ok {
		return u, ok, err
	}
	if !u.IsAdmin() {
		return u, true, nil
	}
	admins, err := tx.Users().CountAdmins(ctx)
	if err != nil {
		return u, false, err
	}
	if admins <= 1 {
		slogx.FromContext(ctx).Warn("refusing to remove the last administrator",
			slog.String("username", username))
		return u, false, nil
	}
	return u, true, nil
}

func findUser(ctx context.Context, tx store.Tx, username string) (domain.User, bool, error) {
	u, err := tx.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Warn("user not found", slog.String("username", username))
			return u, false, nil
		}
		return u, false, err
	}
	return u, true, nil
}

// Authenticate checks secret against the password and then against a live
// one-time password. Unknown users and wrong secrets both yield
// ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, secret string) (AuthResult, error) {
	log := slogx.FromContext(ctx)
	username = strings.TrimSpace(username)

	u, err := s.Store.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login for unknown user", slog.String("username", username))
			return AuthResult{}, domain.ErrInvalidCredentials
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return AuthResult{}, err
	}

	err = cryptox.VerifyPassword(secret, u.PasswordHash)
	if err == nil {
		return AuthResult{User: u}, nil
	}
	if !errors.Is(err, cryptox.ErrPasswordMismatch) {
		log.Error("stored password hash is unusable",
			slog.String("username", username),
			slog.Any("error", err),
		)
	}

	if secret != "" {
		codeHash := cryptox.FingerprintToken(secret)
		ok, err := s.Store.Users().CheckOTP(ctx, u.Username, codeHash, clock(s.Now))
		if err != nil {
			log.Error("failed to check one-time password", slog.Any("error", err))
			return AuthResult{}, err
		}
		if ok {
			log.Info("login with one-time password", slog.String("username", username))
			return AuthResult{User: u, MustResetPassword: true, OTPRef: OTPRef(codeHash)}, nil
		}
	}

	log.Warn("login with wrong credentials", slog.String("username", username))
	return AuthResult{}, domain.ErrInvalidCredentials
}

func (s *AccountService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().List(ctx)
}

// GetUser reports false when username does not exist.
func (s *AccountService) GetUser(ctx context.Context, username string) (domain.User, bool, error) {
	u, err := s.Store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return u, true, nil
}

// UpdateEmail sets or clears the email address of username.
func (s *AccountService) UpdateEmail(ctx context.Context, username, email string) (bool, error) {
	email, err := domain.ValidateEmail(email)
	if err != nil {
		return false, err
	}
	return found(s.Store.Users().UpdateEmail(ctx, strings.TrimSpace(username), email))
}

func (s *AccountService) UpdateMiddleInitial(ctx context.Context, username, initial string) (bool, error) {
	return found(s.Store.Users().UpdateMiddleInitial(ctx, strings.TrimSpace(username),
		domain.NormalizeMiddleInitial(initial)))
}

// found folds store.ErrNotFound into a false outcome.
func found(err error) (bool, error) {
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
