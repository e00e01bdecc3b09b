package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// StorageError wraps a failure reported by the underlying database so
// callers can tell it apart from business outcomes.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "store: " + e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

// Store is the root data access interface. Sub-repositories are exposed as
// methods so a Tx can hand out repositories bound to the same transaction.
type Store interface {
	Users() Users
	Questions() Questions
	Answers() Answers
	Invitations() Invitations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise. Inside fn only the repositories of tx may
	// be used.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	Count(ctx context.Context) (int, error)
	CountAdmins(ctx context.Context) (int, error)

	GetByUsername(ctx context.Context, username string) (domain.User, error)

	// List returns all users ordered by username.
	List(ctx context.Context) ([]domain.User, error)

	// Create inserts a user. A taken username yields ErrAlreadyExists.
	Create(ctx context.Context, u domain.User) error

	UpdateRole(ctx context.Context, username string, role domain.Role) error
	UpdatePasswordHash(ctx context.Context, username, hash string) error
	UpdateEmail(ctx context.Context, username, email string) error
	UpdateMiddleInitial(ctx context.Context, username, initial string) error

	Delete(ctx context.Context, username string) error

	// SetOTP overwrites any previous OTP and marks the new one unused.
	SetOTP(ctx context.Context, username, codeHash string, expiresAt *time.Time) error

	// CheckOTP reports whether codeHash matches a live OTP at now.
	CheckOTP(ctx context.Context, username, codeHash string, now time.Time) (bool, error)

	// ConsumeOTP clears the OTP value and marks it used.
	ConsumeOTP(ctx context.Context, username string) error

	// PurgeExpiredOTPs consumes every OTP that expired before now and
	// returns how many were affected.
	PurgeExpiredOTPs(ctx context.Context, now time.Time) (int64, error)
}

type Questions interface {
	// Create inserts the question and returns its new id.
	Create(ctx context.Context, q domain.Question) (int64, error)

	GetByID(ctx context.Context, id int64) (domain.Question, error)

	// List returns questions newest first. An empty owner lists everyone's.
	List(ctx context.Context, owner string) ([]domain.Question, error)

	ListUnresolved(ctx context.Context) ([]domain.Question, error)

	// Search matches keyword case-insensitively against title and content.
	Search(ctx context.Context, keyword string) ([]domain.Question, error)

	// Update changes title and content when owner asked the question. It
	// reports whether a row was changed.
	Update(ctx context.Context, id int64, owner, title, content string) (bool, error)

	// Delete removes an owned question. Remaining answers follow through
	// the foreign key cascade.
	Delete(ctx context.Context, id int64, owner string) (bool, error)

	// SetResolved updates the resolution flag of an owned question. A nil
	// answerID leaves the accepted answer untouched.
	SetResolved(ctx context.Context, id int64, owner string, answerID *int64, resolved bool) (bool, error)
}

type Answers interface {
	Create(ctx context.Context, a domain.Answer) (int64, error)
	GetByID(ctx context.Context, id int64) (domain.Answer, error)

	// ListForQuestion orders by upvotes descending, then oldest first.
	ListForQuestion(ctx context.Context, questionID int64) ([]domain.Answer, error)

	Update(ctx context.Context, id int64, owner, content string) (bool, error)
	Delete(ctx context.Context, id int64, owner string) (bool, error)
	DeleteForQuestion(ctx context.Context, questionID int64) (int64, error)

	IncrementUpvotes(ctx context.Context, id int64) (bool, error)
	MarkRead(ctx context.Context, id int64) (bool, error)
	CountUnread(ctx context.Context, questionID int64) (int, error)
}

type Invitations interface {
	Create(ctx context.Context, c domain.InvitationCode) error
	Get(ctx context.Context, code string) (domain.InvitationCode, error)

	// Redeem marks an unused, unexpired code as used by usedBy in a single
	// statement and reports whether it succeeded.
	Redeem(ctx context.Context, code, usedBy string, now time.Time) (bool, error)

	// PurgeExpired marks unused codes that expired before now as used.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
