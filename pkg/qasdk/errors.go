package qasdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/qaboard/pkg/httpx"
)

// Error codes carried in the "error" field of an error body.
const (
	ErrorCodeInvalidRequest        = "invalid_request"
	ErrorCodeInvalidInvitation     = "invalid_invitation"
	ErrorCodeInvalidCredentials    = "invalid_credentials"
	ErrorCodeInvalidToken          = "invalid_token"
	ErrorCodeForbidden             = "forbidden"
	ErrorCodePasswordResetRequired = "password_reset_required"
	ErrorCodeNotFound              = "not_found"
	ErrorCodeDuplicateUsername     = "duplicate_username"
	ErrorCodeLastAdmin             = "last_admin"
	ErrorCodeRateLimited           = "rate_limit_exceeded"
	ErrorCodeServerError           = "server_error"
)

// APIError is a non-2xx API response. The server writes it and the client
// decodes it.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e to w.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

// NewAPIError builds an APIError with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Description: description}
}

var (
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid username or password",
	}

	ErrInvalidInvitation = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidInvitation,
		Description: "invitation code is unknown, used or expired",
	}

	ErrDuplicateUsername = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeDuplicateUsername,
		Description: "username already taken",
	}

	ErrLastAdmin = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeLastAdmin,
		Description: "the last admin cannot be removed or demoted",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "resource not found",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns a non-2xx body into an *APIError. Bodies that are
// not JSON still produce an error carrying the status code.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = http.StatusText(resp.StatusCode)
		apiErr.Description = string(body)
	}
	return apiErr
}
