package qasdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Session is an authenticated handle. Sessions do not refresh; once the token
// expires the caller logs in again.
type Session struct {
	client *Client

	mu                sync.RWMutex
	token             string
	expiresAt         time.Time
	mustResetPassword bool
}

func newSession(c *Client, resp SessionResponse) *Session {
	return &Session{
		client:            c,
		token:             resp.AccessToken,
		expiresAt:         resp.ExpiresAt,
		mustResetPassword: resp.MustResetPassword,
	}
}

// Token returns the bearer token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// MustResetPassword reports whether this is a one-time password session.
func (s *Session) MustResetPassword() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mustResetPassword
}

func (s *Session) do(ctx context.Context, method, path string, in, out any, expectedStatus int) error {
	return s.client.doJSON(ctx, method, path, s.Token(), in, out, expectedStatus)
}

// RedeemOTP sets a new password. The session stays an OTP session; log in
// again with the new password afterwards.
func (s *Session) RedeemOTP(ctx context.Context, newPassword string) error {
	err := s.do(ctx, http.MethodPost, "/v1/otp/redeem", RedeemOTPRequest{NewPassword: newPassword}, nil, http.StatusNoContent)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.mustResetPassword = false
	s.mu.Unlock()
	return nil
}

// ============================================================================
// Profile
// ============================================================================

func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	var out UserResponse
	if err := s.do(ctx, http.MethodGet, "/v1/users/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateMe(ctx context.Context, req UpdateMeRequest) (*UserResponse, error) {
	var out UserResponse
	if err := s.do(ctx, http.MethodPatch, "/v1/users/me", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Administration
// ============================================================================

func (s *Session) ListUsers(ctx context.Context) ([]UserResponse, error) {
	var out UserListResponse
	if err := s.do(ctx, http.MethodGet, "/v1/users", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	var out UserResponse
	if err := s.do(ctx, http.MethodPost, "/v1/users", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteUser(ctx context.Context, username string) error {
	return s.do(ctx, http.MethodDelete, "/v1/users/"+url.PathEscape(username), nil, nil, http.StatusNoContent)
}

func (s *Session) ChangeRole(ctx context.Context, username, role string) error {
	path := fmt.Sprintf("/v1/users/%s/role", url.PathEscape(username))
	return s.do(ctx, http.MethodPut, path, ChangeRoleRequest{Role: role}, nil, http.StatusNoContent)
}

// IssueOTP sets a one-time password for username and returns the code.
func (s *Session) IssueOTP(ctx context.Context, username string, req IssueOTPRequest) (*IssueOTPResponse, error) {
	var out IssueOTPResponse
	path := fmt.Sprintf("/v1/users/%s/otp", url.PathEscape(username))
	if err := s.do(ctx, http.MethodPost, path, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) MintInvitation(ctx context.Context, req InviteRequest) (*InviteResponse, error) {
	var out InviteResponse
	if err := s.do(ctx, http.MethodPost, "/v1/invitations", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Questions
// ============================================================================

func (s *Session) AskQuestion(ctx context.Context, title, content string) (*QuestionResponse, error) {
	var out QuestionResponse
	req := QuestionRequest{Title: title, Content: content}
	if err := s.do(ctx, http.MethodPost, "/v1/questions", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// QuestionFilter narrows ListQuestions. The zero value lists every question.
type QuestionFilter struct {
	Owner      string
	Unresolved bool
	Search     string
}

func (s *Session) ListQuestions(ctx context.Context, f QuestionFilter) ([]QuestionResponse, error) {
	q := url.Values{}
	if f.Owner != "" {
		q.Set("owner", f.Owner)
	}
	if f.Unresolved {
		q.Set("unresolved", "true")
	}
	if f.Search != "" {
		q.Set("q", f.Search)
	}
	path := "/v1/questions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out QuestionListResponse
	if err := s.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

func (s *Session) GetQuestion(ctx context.Context, id int64) (*QuestionResponse, error) {
	var out QuestionResponse
	if err := s.do(ctx, http.MethodGet, questionPath(id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) EditQuestion(ctx context.Context, id int64, title, content string) error {
	req := QuestionRequest{Title: title, Content: content}
	return s.do(ctx, http.MethodPut, questionPath(id), req, nil, http.StatusNoContent)
}

func (s *Session) DeleteQuestion(ctx context.Context, id int64) error {
	return s.do(ctx, http.MethodDelete, questionPath(id), nil, nil, http.StatusNoContent)
}

func (s *Session) ResolveQuestion(ctx context.Context, id, answerID int64) error {
	return s.do(ctx, http.MethodPost, questionPath(id)+"/resolve", ResolveRequest{AnswerID: answerID}, nil, http.StatusNoContent)
}

func (s *Session) CloseQuestion(ctx context.Context, id int64) error {
	return s.do(ctx, http.MethodPost, questionPath(id)+"/close", nil, nil, http.StatusNoContent)
}

func (s *Session) ReopenQuestion(ctx context.Context, id int64) error {
	return s.do(ctx, http.MethodPost, questionPath(id)+"/reopen", nil, nil, http.StatusNoContent)
}

// ============================================================================
// Answers
// ============================================================================

func (s *Session) PostAnswer(ctx context.Context, questionID int64, content string) (*AnswerResponse, error) {
	var out AnswerResponse
	if err := s.do(ctx, http.MethodPost, questionPath(questionID)+"/answers", AnswerRequest{Content: content}, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListAnswers(ctx context.Context, questionID int64) ([]AnswerResponse, error) {
	var out AnswerListResponse
	if err := s.do(ctx, http.MethodGet, questionPath(questionID)+"/answers", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Answers, nil
}

func (s *Session) EditAnswer(ctx context.Context, id int64, content string) error {
	return s.do(ctx, http.MethodPut, answerPath(id), AnswerRequest{Content: content}, nil, http.StatusNoContent)
}

func (s *Session) DeleteAnswer(ctx context.Context, id int64) error {
	return s.do(ctx, http.MethodDelete, answerPath(id), nil, nil, http.StatusNoContent)
}

func (s *Session) UpvoteAnswer(ctx context.Context, id int64) error {
	return s.do(ctx, http.MethodPost, answerPath(id)+"/upvote", nil, nil, http.StatusNoContent)
}

func (s *Session) MarkAnswerRead(ctx context.Context, id int64) error {
	return s.do(ctx, http.MethodPost, answerPath(id)+"/read", nil, nil, http.StatusNoContent)
}

func questionPath(id int64) string { return "/v1/questions/" + strconv.FormatInt(id, 10) }

func answerPath(id int64) string { return "/v1/answers/" + strconv.FormatInt(id, 10) }
