package qasdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Client talks to a qaboard server. It performs the unauthenticated calls and
// opens Sessions for everything else.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login authenticates and returns a session. When the secret was a one-time
// password the session reports MustResetPassword.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var out SessionResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/sessions", "", LoginRequest{
		Username: username,
		Password: password,
	}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return newSession(c, out), nil
}

// NewSessionFromToken wraps a token obtained elsewhere.
func (c *Client) NewSessionFromToken(token string, expiresAt time.Time) *Session {
	return &Session{client: c, token: token, expiresAt: expiresAt}
}

// Register creates an account through self-service registration.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	var out UserResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/users/register", "", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckCredential classifies value as a username or password.
func (c *Client) CheckCredential(ctx context.Context, kind, value string) (*CredentialCheckResponse, error) {
	var out CredentialCheckResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/credentials/check", "", CredentialCheckRequest{
		Kind:  kind,
		Value: value,
	}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", "", nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness checks if the service is ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", "", nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
