package qasdk

import (
	"time"

	"github.com/aussiebroadwan/qaboard/pkg/credential"
)

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the readiness of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// ============================================================================
// Credentials
// ============================================================================

// Credential kinds accepted by the check endpoint.
const (
	KindUsername = "username"
	KindPassword = "password"
)

// CredentialCheckRequest asks the server to classify a candidate username or
// password without creating anything.
type CredentialCheckRequest struct {
	Kind  string `json:"kind" validate:"required,oneof=username password"`
	Value string `json:"value"`
}

// CredentialCheckResponse mirrors a credential.Result.
type CredentialCheckResponse struct {
	Valid      bool             `json:"valid"`
	State      string           `json:"state"`
	Message    string           `json:"message,omitempty"`
	ErrorIndex int              `json:"error_index"`
	Flags      credential.Flags `json:"flags"`
}

// NewCredentialCheckResponse converts a scan result.
func NewCredentialCheckResponse(r credential.Result) CredentialCheckResponse {
	return CredentialCheckResponse{
		Valid:      r.OK(),
		State:      r.State.String(),
		Message:    r.Message,
		ErrorIndex: r.ErrorIndex,
		Flags:      r.Flags,
	}
}

// ============================================================================
// Accounts
// ============================================================================

// RegisterRequest creates an account through self-service registration.
// The invitation code is ignored for the very first account.
type RegisterRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	Email          string `json:"email,omitempty"`
	MiddleInitial  string `json:"middle_initial,omitempty" validate:"omitempty,max=4"`
	InvitationCode string `json:"invitation_code,omitempty"`
}

// CreateUserRequest is the admin variant of RegisterRequest.
type CreateUserRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Email         string `json:"email,omitempty"`
	MiddleInitial string `json:"middle_initial,omitempty" validate:"omitempty,max=4"`
	Role          string `json:"role,omitempty" validate:"omitempty,oneof=user student reviewer instructor staff admin"`
}

// ChangeRoleRequest sets a user's role.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// UpdateMeRequest changes profile fields of the caller. Nil fields are left
// untouched.
type UpdateMeRequest struct {
	Email         *string `json:"email,omitempty"`
	MiddleInitial *string `json:"middle_initial,omitempty" validate:"omitempty,max=4"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email,omitempty"`
	MiddleInitial string    `json:"middle_initial,omitempty"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

// ============================================================================
// Sessions and one-time passwords
// ============================================================================

// LoginRequest authenticates with a password or a one-time password.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse carries a bearer token. MustResetPassword is set when the
// session was opened with a one-time password; such a session may only call
// the OTP redeem endpoint.
type SessionResponse struct {
	AccessToken       string    `json:"access_token"`
	TokenType         string    `json:"token_type"`
	ExpiresIn         int       `json:"expires_in"`
	ExpiresAt         time.Time `json:"expires_at"`
	MustResetPassword bool      `json:"must_reset_password"`
}

// IssueOTPRequest sets a one-time password for a user. A blank code asks the
// server to generate one. TTLMinutes <= 0 uses the server default.
type IssueOTPRequest struct {
	Code       string `json:"code,omitempty" validate:"omitempty,min=6,max=64"`
	TTLMinutes int    `json:"ttl_minutes,omitempty" validate:"gte=0,lte=10080"`
}

type IssueOTPResponse struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

// RedeemOTPRequest replaces the temporary password of an OTP session.
type RedeemOTPRequest struct {
	NewPassword string `json:"new_password"`
}

// ============================================================================
// Invitations
// ============================================================================

// InviteRequest mints a single-use registration code. TTLMinutes <= 0 mints a
// code that never expires.
type InviteRequest struct {
	Role       string `json:"role,omitempty"`
	TTLMinutes int    `json:"ttl_minutes,omitempty" validate:"gte=0,lte=525600"`
}

type InviteResponse struct {
	Code      string     `json:"code"`
	Role      string     `json:"role"`
	CreatedBy string     `json:"created_by"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ============================================================================
// Questions and answers
// ============================================================================

// QuestionRequest is used to ask and to edit a question.
type QuestionRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ResolveRequest marks a question resolved by one of its answers.
type ResolveRequest struct {
	AnswerID int64 `json:"answer_id" validate:"required,gt=0"`
}

type QuestionResponse struct {
	ID               int64            `json:"id"`
	Title            string           `json:"title"`
	Content          string           `json:"content"`
	AskedBy          string           `json:"asked_by"`
	CreatedAt        time.Time        `json:"created_at"`
	IsResolved       bool             `json:"is_resolved"`
	Closed           bool             `json:"closed"`
	ResolvedAnswerID *int64           `json:"resolved_answer_id,omitempty"`
	UnreadCount      int              `json:"unread_count"`
	Answers          []AnswerResponse `json:"answers,omitempty"`
}

type QuestionListResponse struct {
	Questions []QuestionResponse `json:"questions"`
}

// AnswerRequest is used to post and to edit an answer.
type AnswerRequest struct {
	Content string `json:"content"`
}

type AnswerResponse struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"question_id"`
	Content    string    `json:"content"`
	AnsweredBy string    `json:"answered_by"`
	CreatedAt  time.Time `json:"created_at"`
	IsRead     bool      `json:"is_read"`
	Upvotes    int       `json:"upvotes"`
}

type AnswerListResponse struct {
	Answers []AnswerResponse `json:"answers"`
}
