package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
	"github.com/aussiebroadwan/qaboard/pkg/credential"
	"github.com/stretchr/testify/require"
)

func TestValidateQuestionTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		want    string
		wantErr error
	}{
		{"valid", "Valid Title", "Valid Title", nil},
		{"trimmed", "   Valid Title  ", "Valid Title", nil},
		{"exactly five", "Hello", "Hello", nil},
		{"too short", "Hi", "", domain.ErrLengthViolation},
		{"too long", strings.Repeat("x", 101), "", domain.ErrLengthViolation},
		{"blank", "   ", "", domain.ErrBlankField},
		{"empty", "", "", domain.ErrBlankField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ValidateQuestionTitle(tt.title)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLengthViolationCarriesBounds(t *testing.T) {
	_, err := domain.ValidateQuestionContent("short")

	var lv *domain.LengthViolationError
	require.True(t, errors.As(err, &lv))
	require.Equal(t, "content", lv.Field)
	require.Equal(t, domain.QuestionMin, lv.Min)
	require.Equal(t, domain.QuestionMax, lv.Max)
	require.Equal(t, 5, lv.Actual)
	require.Contains(t, err.Error(), "between 10 and 500")
}

func TestLengthsAreCountedInRunes(t *testing.T) {
	// Five runes, ten bytes.
	got, err := domain.ValidateAnswerContent("ééééé")
	require.NoError(t, err)
	require.Equal(t, "ééééé", got)
}

func TestValidateAnswerContent(t *testing.T) {
	_, err := domain.ValidateAnswerContent("four")
	require.ErrorIs(t, err, domain.ErrLengthViolation)

	_, err = domain.ValidateAnswerContent(strings.Repeat("a", 501))
	require.ErrorIs(t, err, domain.ErrLengthViolation)

	_, err = domain.ValidateAnswerContent("\t\n")
	var blank *domain.BlankFieldError
	require.True(t, errors.As(err, &blank))
	require.Equal(t, "content", blank.Field)
}

func TestValidateUsername(t *testing.T) {
	got, err := domain.ValidateUsername("alice")
	require.NoError(t, err)
	require.Equal(t, "alice", got)

	for _, padded := range []string{" alice", "alice ", "  alice "} {
		_, err = domain.ValidateUsername(padded)
		require.ErrorIs(t, err, credential.ErrRejected, padded)
		require.Contains(t, err.Error(), "Special character", padded)
	}

	_, err = domain.ValidateUsername("al_ice")
	require.ErrorIs(t, err, credential.ErrRejected)

	_, err = domain.ValidateUsername(strings.Repeat("a", 21))
	var lv *domain.LengthViolationError
	require.True(t, errors.As(err, &lv))
	require.Equal(t, "username", lv.Field)
	require.Equal(t, 21, lv.Actual)
}

func TestValidatePassword(t *testing.T) {
	require.NoError(t, domain.ValidatePassword("NewPass1!"))

	err := domain.ValidatePassword("password")
	require.ErrorIs(t, err, credential.ErrRejected)
	require.Contains(t, err.Error(), "Upper case")
}

func TestValidateEmail(t *testing.T) {
	got, err := domain.ValidateEmail(" bob@example.com ")
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", got)

	got, err = domain.ValidateEmail("")
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = domain.ValidateEmail("not-an-email")
	require.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestNormalizeMiddleInitial(t *testing.T) {
	require.Equal(t, "Q", domain.NormalizeMiddleInitial("q"))
	require.Equal(t, "J", domain.NormalizeMiddleInitial(" jr "))
	require.Equal(t, "", domain.NormalizeMiddleInitial("  "))
}

func TestRolePrivilege(t *testing.T) {
	require.Equal(t, 0, domain.RoleUser.Privilege())
	require.Equal(t, 1, domain.RoleStudent.Privilege())
	require.Equal(t, 2, domain.RoleReviewer.Privilege())
	require.Equal(t, 3, domain.RoleInstructor.Privilege())
	require.Equal(t, 4, domain.RoleStaff.Privilege())
	require.Equal(t, 99, domain.RoleAdmin.Privilege())
	require.Equal(t, 0, domain.Role("janitor").Privilege())

	// Admin outranks everything else.
	for _, r := range domain.Roles() {
		require.LessOrEqual(t, r.Privilege(), domain.RoleAdmin.Privilege())
	}
}

func TestParseRole(t *testing.T) {
	r, err := domain.ParseRole(" Instructor ")
	require.NoError(t, err)
	require.Equal(t, domain.RoleInstructor, r)

	_, err = domain.ParseRole("superuser")
	require.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestOneTimePasswordLive(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	var nilOTP *domain.OneTimePassword
	require.False(t, nilOTP.Live(now))
	require.True(t, (&domain.OneTimePassword{CodeHash: "h"}).Live(now))
	require.True(t, (&domain.OneTimePassword{CodeHash: "h", ExpiresAt: &future}).Live(now))
	require.False(t, (&domain.OneTimePassword{CodeHash: "h", ExpiresAt: &past}).Live(now))
	require.False(t, (&domain.OneTimePassword{CodeHash: "h", Used: true}).Live(now))
	require.False(t, (&domain.OneTimePassword{}).Live(now))
}

func TestQuestionClosed(t *testing.T) {
	require.True(t, domain.Question{IsResolved: true, ResolvedAnswerID: domain.NoAnswer}.Closed())
	require.False(t, domain.Question{IsResolved: true, ResolvedAnswerID: 7}.Closed())
	require.False(t, domain.Question{ResolvedAnswerID: domain.NoAnswer}.Closed())
}
