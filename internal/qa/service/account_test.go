package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
	"github.com/aussiebroadwan/qaboard/pkg/credential"
	"github.com/stretchr/testify/require"
)

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.accounts.Register(ctx, domain.NewUser{
		Username: "alice",
		Password: password,
		Role:     domain.RoleStudent,
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)
	require.NotEmpty(t, u.ID)

	stored, ok, err := f.accounts.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.RoleAdmin, stored.Role)
	require.NotEqual(t, password, stored.PasswordHash)
}

func TestRegisterRequiresInvitation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.createUser(t, "alice", domain.RoleAdmin)

	_, err := f.accounts.Register(ctx, domain.NewUser{Username: "bobby", Password: password})
	require.ErrorIs(t, err, domain.ErrInvalidInvitationCode)

	_, err = f.accounts.Register(ctx, domain.NewUser{Username: "bobby", Password: password, InvitationCode: "NOPE000000"})
	require.ErrorIs(t, err, domain.ErrInvalidInvitationCode)

	inv, err := f.invites.Mint(ctx, domain.RoleReviewer, 0, "alice")
	require.NoError(t, err)

	// Lower-case input is accepted and the invitation decides the role.
	u, err := f.accounts.Register(ctx, domain.NewUser{
		Username:       "bobby",
		Password:       password,
		Role:           domain.RoleStaff,
		InvitationCode: strings.ToLower(inv.Code),
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleReviewer, u.Role)

	// Codes are single use.
	_, err = f.accounts.Register(ctx, domain.NewUser{Username: "carol", Password: password, InvitationCode: inv.Code})
	require.ErrorIs(t, err, domain.ErrInvalidInvitationCode)

	stored, err := f.store.Invitations().Get(ctx, inv.Code)
	require.NoError(t, err)
	require.True(t, stored.IsUsed)
	require.Equal(t, "bobby", stored.UsedBy)
}

func TestRegisterDuplicateLeavesInvitationUnused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.createUser(t, "alice", domain.RoleAdmin)

	inv, err := f.invites.Mint(ctx, domain.RoleUser, 60, "alice")
	require.NoError(t, err)

	_, err = f.accounts.Register(ctx, domain.NewUser{Username: "alice", Password: password, InvitationCode: inv.Code})
	require.ErrorIs(t, err, domain.ErrDuplicateUsername)

	stored, err := f.store.Invitations().Get(ctx, inv.Code)
	require.NoError(t, err)
	require.False(t, stored.IsUsed)
}

func TestRegisterWithExpiredInvitation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.createUser(t, "alice", domain.RoleAdmin)

	inv, err := f.invites.Mint(ctx, domain.RoleUser, 10, "alice")
	require.NoError(t, err)
	f.advance(11 * time.Minute)

	_, err = f.accounts.Register(ctx, domain.NewUser{Username: "bobby", Password: password, InvitationCode: inv.Code})
	require.ErrorIs(t, err, domain.ErrInvalidInvitationCode)
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name string
		in   domain.NewUser
		want error
	}{
		{"empty username", domain.NewUser{Password: password}, credential.ErrRejected},
		{"short username", domain.NewUser{Username: "bob", Password: password}, credential.ErrRejected},
		{"username with special", domain.NewUser{Username: "bob.smith", Password: password}, credential.ErrRejected},
		{"leading space", domain.NewUser{Username: " alice", Password: password}, credential.ErrRejected},
		{"trailing space", domain.NewUser{Username: "alice ", Password: password}, credential.ErrRejected},
		{"long username", domain.NewUser{Username: strings.Repeat("a", 21), Password: password}, domain.ErrLengthViolation},
		{"weak password", domain.NewUser{Username: "bobby", Password: "password"}, credential.ErrRejected},
		{"bad email", domain.NewUser{Username: "bobby", Password: password, Email: "nope"}, domain.ErrInvalidEmail},
		{"unknown role", domain.NewUser{Username: "bobby", Password: password, Role: "wizard"}, domain.ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.accounts.CreateUser(ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}

	n, err := f.store.Users().Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestCreateUserNormalisesFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.createUser(t, "alice", domain.RoleAdmin)

	u, err := f.accounts.CreateUser(ctx, domain.NewUser{
		Username:      "bobby",
		Password:      password,
		Email:         " bobby@example.com ",
		MiddleInitial: "quentin",
		Role:          domain.RoleInstructor,
	})
	require.NoError(t, err)
	require.Equal(t, "bobby", u.Username)
	require.Equal(t, "bobby@example.com", u.Email)
	require.Equal(t, "Q", u.MiddleInitial)
	require.Equal(t, domain.RoleInstructor, u.Role)

	_, err = f.accounts.CreateUser(ctx, domain.NewUser{Username: "bobby", Password: password})
	require.ErrorIs(t, err, domain.ErrDuplicateUsername)
}

func TestLastAdminIsProtected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.createUser(t, "alice", domain.RoleAdmin)
	f.createUser(t, "bobby", domain.RoleStudent)

	ok, err := f.accounts.DeleteUser(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = f.accounts.ChangeRole(ctx, "alice", domain.RoleStaff)
	require.NoError(t, err)
	require.False(t, ok)

	u, _, err := f.accounts.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)

	// Re-asserting admin on the last admin is harmless.
	ok, err = f.accounts.ChangeRole(ctx, "alice", domain.RoleAdmin)
	require.NoError(t, err)
	require.True(t, ok)

	// With a second admin the first can step down and be removed.
	ok, err = f.accounts.ChangeRole(ctx, "bobby", domain.RoleAdmin)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.accounts.ChangeRole(ctx, "alice", domain.RoleUser)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.accounts.DeleteUser(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.accounts.DeleteUser(ctx, "bobby")
	require.NoError(t, err)
	require.False(t, ok, "bobby is now the only admin")
}

func TestDeleteAndChangeRoleUnknownUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.createUser(t, "alice", domain.RoleAdmin)

	ok, err := f.accounts.DeleteUser(ctx, "ghost")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = f.accounts.ChangeRole(ctx, "ghost", domain.RoleStudent)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = f.accounts.ChangeRole(ctx, "alice", domain.Role("wizard"))
	require.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.createUser(t, "alice", domain.RoleAdmin)

	res, err := f.accounts.Authenticate(ctx, "alice", password)
	require.NoError(t, err)
	require.Equal(t, "alice", res.User.Username)
	require.False(t, res.MustResetPassword)

	_, err = f.accounts.Authenticate(ctx, "alice", "Wrong0ne!")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.accounts.Authenticate(ctx, "ghost", password)
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.accounts.Authenticate(ctx, "alice", "")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateWithOneTimePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.createUser(t, "alice", domain.RoleAdmin)

	code, ok, err := f.otps.Issue(ctx, "alice", "", 10)
	require.NoError(t, err)
	require.True(t, ok)

	res, err := f.accounts.Authenticate(ctx, "alice", code)
	require.NoError(t, err)
	require.True(t, res.MustResetPassword)

	// The permanent password still works alongside it.
	res, err = f.accounts.Authenticate(ctx, "alice", password)
	require.NoError(t, err)
	require.False(t, res.MustResetPassword)

	f.advance(11 * time.Minute)
	_, err = f.accounts.Authenticate(ctx, "alice", code)
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.createUser(t, "alice", domain.RoleAdmin)

	ok, err := f.accounts.UpdateEmail(ctx, "alice", "alice@example.com")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.accounts.UpdateEmail(ctx, "alice", "not-an-email")
	require.ErrorIs(t, err, domain.ErrInvalidEmail)

	ok, err = f.accounts.UpdateMiddleInitial(ctx, "alice", "j")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.accounts.UpdateEmail(ctx, "ghost", "")
	require.NoError(t, err)
	require.False(t, ok)

	u, _, err := f.accounts.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)
	require.Equal(t, "J", u.MiddleInitial)

	users, err := f.accounts.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}
