package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
	"github.com/aussiebroadwan/qaboard/internal/qa/service"
	"github.com/aussiebroadwan/qaboard/internal/qa/store"
	"github.com/aussiebroadwan/qaboard/internal/qa/store/drivers/sqlite"
	"github.com/aussiebroadwan/qaboard/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

const password = "Passw0rd!"

func TestMain(m *testing.M) {
	cryptox.SetPepper("service-test-pepper")
	os.Exit(m.Run())
}

// fixture bundles the services over one in-memory store and a settable clock.
type fixture struct {
	store store.Store
	now   time.Time

	accounts  *service.AccountService
	otps      *service.OTPService
	invites   *service.InviteService
	questions *service.QuestionService
	answers   *service.AnswerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	f := &fixture{store: st, now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }

	f.accounts = &service.AccountService{Store: st, Now: clock}
	f.otps = &service.OTPService{Store: st, Now: clock}
	f.invites = &service.InviteService{Store: st, Now: clock}
	f.questions = &service.QuestionService{Store: st, Now: clock}
	f.answers = &service.AnswerService{Store: st, Now: clock}
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

// createUser adds an account directly, bypassing invitations.
func (f *fixture) createUser(t *testing.T, username string, role domain.Role) domain.User {
	t.Helper()
	u, err := f.accounts.CreateUser(context.Background(), domain.NewUser{
		Username: username,
		Password: password,
		Role:     role,
	})
	require.NoError(t, err)
	return u
}
