package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
	"github.com/aussiebroadwan/qaboard/internal/qa/store"
	"github.com/aussiebroadwan/qaboard/internal/qa/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedUser(t *testing.T, st store.Store, username string, role domain.Role) {
	t.Helper()
	err := st.Users().Create(context.Background(), domain.User{
		ID:           "id-" + username,
		Username:     username,
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}

func TestUsersCreateAndCount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	n, err := st.Users().Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	seedUser(t, st, "alice", domain.RoleAdmin)
	seedUser(t, st, "bob", domain.RoleStudent)

	n, err = st.Users().Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	admins, err := st.Users().CountAdmins(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, admins)

	u, err := st.Users().GetByUsername(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, domain.RoleStudent, u.Role)
	require.Nil(t, u.OTP)
	require.False(t, u.CreatedAt.IsZero())

	users, err := st.Users().List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "alice", users[0].Username)
}

func TestUsersDuplicateUsername(t *testing.T) {
	st := newTestStore(t)
	seedUser(t, st, "alice", domain.RoleUser)

	err := st.Users().Create(context.Background(), domain.User{
		ID:           "other",
		Username:     "alice",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsersNotFound(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Users().GetByUsername(ctx, "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, st.Users().UpdateRole(ctx, "ghost", domain.RoleStaff), store.ErrNotFound)
	require.ErrorIs(t, st.Users().Delete(ctx, "ghost"), store.ErrNotFound)
}

func TestUsersOTPLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice", domain.RoleUser)

	now := time.Now().UTC()
	exp := now.Add(30 * time.Minute)
	require.NoError(t, st.Users().SetOTP(ctx, "alice", "fp-1", &exp))

	ok, err := st.Users().CheckOTP(ctx, "alice", "fp-1", now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = st.Users().CheckOTP(ctx, "alice", "fp-wrong", now)
	require.NoError(t, err)
	require.False(t, ok)

	// Past the expiry the same value no longer validates.
	ok, err = st.Users().CheckOTP(ctx, "alice", "fp-1", exp.Add(time.Second))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, st.Users().ConsumeOTP(ctx, "alice"))
	ok, err = st.Users().CheckOTP(ctx, "alice", "fp-1", now)
	require.NoError(t, err)
	require.False(t, ok)

	u, err := st.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, u.OTP)
	require.True(t, u.OTP.Used)
	require.Empty(t, u.OTP.CodeHash)
	require.Nil(t, u.OTP.ExpiresAt)

	// Issuing again resets the used flag and overwrites the value.
	require.NoError(t, st.Users().SetOTP(ctx, "alice", "fp-2", nil))
	ok, err = st.Users().CheckOTP(ctx, "alice", "fp-2", now.Add(24*time.Hour))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUsersPurgeExpiredOTPs(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice", domain.RoleUser)
	seedUser(t, st, "bob", domain.RoleUser)
	seedUser(t, st, "carol", domain.RoleUser)

	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	require.NoError(t, st.Users().SetOTP(ctx, "alice", "a", &past))
	require.NoError(t, st.Users().SetOTP(ctx, "bob", "b", &future))
	require.NoError(t, st.Users().SetOTP(ctx, "carol", "c", nil))

	n, err := st.Users().PurgeExpiredOTPs(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	alice, err := st.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, alice.OTP.Used)

	ok, err := st.Users().CheckOTP(ctx, "bob", "b", now)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestQuestionsCRUD(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	id, err := st.Questions().Create(ctx, domain.Question{
		Title:   "Valid Title",
		Content: "Long enough content here",
		AskedBy: "bob",
	})
	require.NoError(t, err)
	require.Positive(t, id)

	q, err := st.Questions().GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.NoAnswer, q.ResolvedAnswerID)
	require.False(t, q.IsResolved)

	ok, err := st.Questions().Update(ctx, id, "mallory", "Other Title", "Other content here")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = st.Questions().Update(ctx, id, "bob", "Other Title", "Other content here")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = st.Questions().SetResolved(ctx, id, "bob", nil, true)
	require.NoError(t, err)
	require.True(t, ok)

	q, err = st.Questions().GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Other Title", q.Title)
	require.True(t, q.Closed())

	_, err = st.Questions().GetByID(ctx, id+100)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestQuestionsListAndSearch(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	base := time.Now().UTC()

	mk := func(title, content, owner string, offset time.Duration) int64 {
		id, err := st.Questions().Create(ctx, domain.Question{
			Title: title, Content: content, AskedBy: owner, CreatedAt: base.Add(offset),
		})
		require.NoError(t, err)
		return id
	}
	first := mk("Goroutine leaks", "How do I find a leaking goroutine?", "bob", 0)
	second := mk("Channel basics", "What is a buffered CHANNEL for?", "alice", time.Second)
	third := mk("100% coverage", "Is 100% coverage worth it in practice?", "bob", 2*time.Second)

	all, err := st.Questions().List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, third, all[0].ID)

	bobs, err := st.Questions().List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobs, 2)

	found, err := st.Questions().Search(ctx, "channel")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, second, found[0].ID)

	found, err = st.Questions().Search(ctx, "GOROUTINE")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, first, found[0].ID)

	// Wildcards in the keyword are literal.
	found, err = st.Questions().Search(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = st.Questions().Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, found, 3)

	answerID := int64(42)
	ok, err := st.Questions().SetResolved(ctx, first, "bob", &answerID, true)
	require.NoError(t, err)
	require.True(t, ok)

	open, err := st.Questions().ListUnresolved(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)

	// Case folding covers letters outside ASCII.
	fourth := mk("ÉCOLE question", "Où se trouve la BIBLIOTHÈQUE?", "alice", 3*time.Second)
	for _, kw := range []string{"école", "ÉCOLE", "bibliothèque", "où"} {
		found, err = st.Questions().Search(ctx, kw)
		require.NoError(t, err)
		require.Len(t, found, 1, kw)
		require.Equal(t, fourth, found[0].ID, kw)
	}
}

func TestAnswersOrderingAndCounters(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	base := time.Now().UTC()

	qid, err := st.Questions().Create(ctx, domain.Question{
		Title: "Valid Title", Content: "Long enough content here", AskedBy: "bob",
	})
	require.NoError(t, err)

	mk := func(content string, offset time.Duration) int64 {
		id, err := st.Answers().Create(ctx, domain.Answer{
			QuestionID: qid, Content: content, AnsweredBy: "alice", CreatedAt: base.Add(offset),
		})
		require.NoError(t, err)
		return id
	}
	older := mk("first answer", 0)
	newer := mk("second answer", time.Second)
	popular := mk("third answer", 2*time.Second)

	ok, err := st.Answers().IncrementUpvotes(ctx, popular)
	require.NoError(t, err)
	require.True(t, ok)

	answers, err := st.Answers().ListForQuestion(ctx, qid)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	require.Equal(t, []int64{popular, older, newer}, []int64{answers[0].ID, answers[1].ID, answers[2].ID})
	require.Equal(t, 1, answers[0].Upvotes)

	unread, err := st.Answers().CountUnread(ctx, qid)
	require.NoError(t, err)
	require.Equal(t, 3, unread)

	ok, err = st.Answers().MarkRead(ctx, older)
	require.NoError(t, err)
	require.True(t, ok)

	unread, err = st.Answers().CountUnread(ctx, qid)
	require.NoError(t, err)
	require.Equal(t, 2, unread)

	ok, err = st.Answers().IncrementUpvotes(ctx, 9999)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAnswersRequireExistingQuestion(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Answers().Create(context.Background(), domain.Answer{
		QuestionID: 12345, Content: "orphan answer", AnsweredBy: "alice",
	})
	require.Error(t, err)

	var se *store.StorageError
	require.True(t, errors.As(err, &se))
}

func TestQuestionDeleteCascades(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	qid, err := st.Questions().Create(ctx, domain.Question{
		Title: "Valid Title", Content: "Long enough content here", AskedBy: "bob",
	})
	require.NoError(t, err)
	for range 2 {
		_, err := st.Answers().Create(ctx, domain.Answer{
			QuestionID: qid, Content: "an answer", AnsweredBy: "alice",
		})
		require.NoError(t, err)
	}

	ok, err := st.Questions().Delete(ctx, qid, "alice")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = st.Questions().Delete(ctx, qid, "bob")
	require.NoError(t, err)
	require.True(t, ok)

	answers, err := st.Answers().ListForQuestion(ctx, qid)
	require.NoError(t, err)
	require.Empty(t, answers)
}

func TestInvitationsRedeemOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	now := time.Now().UTC()
	exp := now.Add(time.Hour)
	require.NoError(t, st.Invitations().Create(ctx, domain.InvitationCode{
		Code: "ABCDEF1234", Role: domain.RoleStudent, CreatedBy: "alice", ExpiresAt: &exp,
	}))

	ok, err := st.Invitations().Redeem(ctx, "ABCDEF1234", "bob", now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = st.Invitations().Redeem(ctx, "ABCDEF1234", "carol", now)
	require.NoError(t, err)
	require.False(t, ok)

	inv, err := st.Invitations().Get(ctx, "ABCDEF1234")
	require.NoError(t, err)
	require.True(t, inv.IsUsed)
	require.Equal(t, "bob", inv.UsedBy)
	require.Equal(t, domain.RoleStudent, inv.Role)

	ok, err = st.Invitations().Redeem(ctx, "NOPE", "bob", now)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInvitationsExpiry(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	require.NoError(t, st.Invitations().Create(ctx, domain.InvitationCode{
		Code: "EXPIRED000", Role: domain.RoleUser, ExpiresAt: &past,
	}))
	require.NoError(t, st.Invitations().Create(ctx, domain.InvitationCode{
		Code: "FOREVER000", Role: domain.RoleUser,
	}))

	ok, err := st.Invitations().Redeem(ctx, "EXPIRED000", "bob", now)
	require.NoError(t, err)
	require.False(t, ok)

	n, err := st.Invitations().PurgeExpired(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	inv, err := st.Invitations().Get(ctx, "EXPIRED000")
	require.NoError(t, err)
	require.True(t, inv.IsUsed)
	require.Empty(t, inv.UsedBy)

	ok, err = st.Invitations().Redeem(ctx, "FOREVER000", "bob", now.Add(24*365*time.Hour))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().Create(ctx, domain.User{
			ID: "x", Username: "alice", PasswordHash: "h", Role: domain.RoleAdmin,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := st.Users().Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	err = st.WithTx(ctx, func(tx store.Tx) error {
		return tx.WithTx(ctx, func(store.Tx) error { return nil })
	})
	require.Error(t, err)
}
