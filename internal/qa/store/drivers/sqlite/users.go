package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
	"github.com/aussiebroadwan/qaboard/internal/qa/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, email, middle_initial, password_hash, role,
	otp_hash, otp_is_used, otp_expires_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u         domain.User
		role      string
		otpHash   sql.NullString
		otpUsed   bool
		otpExpiry sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.MiddleInitial, &u.PasswordHash, &role,
		&otpHash, &otpUsed, &otpExpiry, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	if otpHash.Valid || otpUsed {
		u.OTP = &domain.OneTimePassword{
			CodeHash:  mapNullString(otpHash),
			Used:      otpUsed,
			ExpiresAt: mapNullTimePtr(otpExpiry),
		}
	}
	return u, nil
}

func (r *usersRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, wrapErr("count users", err)
}

func (r *usersRepo) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ?`, string(domain.RoleAdmin),
	).Scan(&n)
	return n, wrapErr("count admins", err)
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, wrapErr("get user", err)
	}
	return u, nil
}

func (r *usersRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, wrapErr("list users", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrapErr("list users", err)
		}
		out = append(out, u)
	}
	return out, wrapErr("list users", rows.Err())
}

func (r *usersRepo) Create(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, middle_initial, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.MiddleInitial, u.PasswordHash, string(u.Role),
		u.CreatedAt.UTC(), now,
	)
	return wrapErr("create user", err)
}

// update runs a single-user UPDATE and reports ErrNotFound when no row matched.
func (r *usersRepo) update(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	ok, err := affected(op, res, err)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) UpdateRole(ctx context.Context, username string, role domain.Role) error {
	return r.update(ctx, "update role",
		`UPDATE users SET role = ?, updated_at = ? WHERE username = ?`,
		string(role), time.Now().UTC(), username)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	return r.update(ctx, "update password",
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE username = ?`,
		hash, time.Now().UTC(), username)
}

func (r *usersRepo) UpdateEmail(ctx context.Context, username, email string) error {
	return r.update(ctx, "update email",
		`UPDATE users SET email = ?, updated_at = ? WHERE username = ?`,
		email, time.Now().UTC(), username)
}

func (r *usersRepo) UpdateMiddleInitial(ctx context.Context, username, initial string) error {
	return r.update(ctx, "update middle initial",
		`UPDATE users SET middle_initial = ?, updated_at = ? WHERE username = ?`,
		initial, time.Now().UTC(), username)
}

func (r *usersRepo) Delete(ctx context.Context, username string) error {
	return r.update(ctx, "delete user", `DELETE FROM users WHERE username = ?`, username)
}

func (r *usersRepo) SetOTP(ctx context.Context, username, codeHash string, expiresAt *time.Time) error {
	return r.update(ctx, "set otp",
		`UPDATE users SET otp_hash = ?, otp_is_used = 0, otp_expires_at = ?, updated_at = ?
		WHERE username = ?`,
		codeHash, mapOptionalTime(expiresAt), time.Now().UTC(), username)
}

func (r *usersRepo) CheckOTP(ctx context.Context, username, codeHash string, now time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users
		WHERE username = ? AND otp_hash = ? AND otp_is_used = 0
		  AND (otp_expires_at IS NULL OR otp_expires_at > ?)`,
		username, codeHash, now.UTC(),
	).Scan(&n)
	if err != nil {
		return false, wrapErr("check otp", err)
	}
	return n == 1, nil
}

func (r *usersRepo) ConsumeOTP(ctx context.Context, username string) error {
	return r.update(ctx, "consume otp",
		`UPDATE users SET otp_hash = NULL, otp_is_used = 1, otp_expires_at = NULL, updated_at = ?
		WHERE username = ?`,
		time.Now().UTC(), username)
}

func (r *usersRepo) PurgeExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET otp_hash = NULL, otp_is_used = 1, otp_expires_at = NULL
		WHERE otp_hash IS NOT NULL AND otp_expires_at IS NOT NULL AND otp_expires_at <= ?`,
		now.UTC())
	return rowsAffected("purge otps", res, err)
}
