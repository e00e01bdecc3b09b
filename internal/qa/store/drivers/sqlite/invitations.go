package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
)

type invitationsRepo struct {
	db dbtx
}

func (r *invitationsRepo) Create(ctx context.Context, c domain.InvitationCode) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitation_codes (code, role, created_by, is_used, expires_at, created_at)
		VALUES (?, ?, ?, 0, ?, ?)`,
		c.Code, string(c.Role), c.CreatedBy, mapOptionalTime(c.ExpiresAt), c.CreatedAt.UTC(),
	)
	return wrapErr("create invitation", err)
}

func (r *invitationsRepo) Get(ctx context.Context, code string) (domain.InvitationCode, error) {
	var (
		c       domain.InvitationCode
		role    string
		usedBy  sql.NullString
		expires sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT code, role, created_by, is_used, used_by, expires_at, created_at
		FROM invitation_codes WHERE code = ?`, code,
	).Scan(&c.Code, &role, &c.CreatedBy, &c.IsUsed, &usedBy, &expires, &c.CreatedAt)
	if err != nil {
		return domain.InvitationCode{}, wrapErr("get invitation", err)
	}
	c.Role = domain.Role(role)
	c.UsedBy = mapNullString(usedBy)
	c.ExpiresAt = mapNullTimePtr(expires)
	return c, nil
}

func (r *invitationsRepo) Redeem(ctx context.Context, code, usedBy string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitation_codes SET is_used = 1, used_by = ?
		WHERE code = ? AND is_used = 0 AND (expires_at IS NULL OR expires_at > ?)`,
		mapStringNull(usedBy), code, now.UTC())
	return affected("redeem invitation", res, err)
}

func (r *invitationsRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitation_codes SET is_used = 1
		WHERE is_used = 0 AND expires_at IS NOT NULL AND expires_at <= ?`,
		now.UTC())
	return rowsAffected("purge invitations", res, err)
}
