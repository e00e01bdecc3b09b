package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
	"github.com/aussiebroadwan/qaboard/internal/qa/store"
	"github.com/aussiebroadwan/qaboard/pkg/cryptox"
	"github.com/aussiebroadwan/qaboard/pkg/slogx"
)

const mintAttempts = 3

type InviteService struct {
	Store store.Store
	Now   func() time.Time
}

// Mint creates a single-use invitation code granting role. A ttl of zero or
// less never expires. Administrator invitations are refused so that admin
// rights are only ever granted by an existing administrator.
func (s *InviteService) Mint(ctx context.Context, role domain.Role, ttlMinutes int, createdBy string) (domain.InvitationCode, error) {
	log := slogx.FromContext(ctx)

	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return domain.InvitationCode{}, domain.ErrInvalidRole
	}
	if role == domain.RoleAdmin {
		log.Warn("attempted to mint admin invitation", slog.String("created_by", createdBy))
		return domain.InvitationCode{}, domain.ErrAdminInviteForbidden
	}

	now := clock(s.Now)
	inv := domain.InvitationCode{
		Role:      role,
		CreatedBy: createdBy,
		CreatedAt: now,
	}
	if ttlMinutes > 0 {
		exp := now.Add(time.Duration(ttlMinutes) * time.Minute)
		inv.ExpiresAt = &exp
	}

	// Codes are short, so retry the rare collision.
	var err error
	for range mintAttempts {
		inv.Code = cryptox.GenerateInvitationCode()
		if err = s.Store.Invitations().Create(ctx, inv); !errors.Is(err, store.ErrAlreadyExists) {
			break
		}
	}
	if err != nil {
		log.Error("failed to create invitation", slog.Any("error", err))
		return domain.InvitationCode{}, err
	}

	log.Info("invitation minted",
		slog.String("code", inv.Code),
		slog.String("role", role.String()),
		slog.String("created_by", createdBy),
	)
	return inv, nil
}
