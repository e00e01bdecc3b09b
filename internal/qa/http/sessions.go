package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/service"
	"github.com/aussiebroadwan/qaboard/pkg/httpx"
	"github.com/aussiebroadwan/qaboard/pkg/qasdk"
)

// SessionHandler exchanges a username and password, or a one-time password,
// for a bearer token.
type SessionHandler struct {
	AccountService *service.AccountService
	SessionService *service.SessionService
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req qasdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.AccountService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	sess, err := h.SessionService.Issue(ctx, res)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, qasdk.SessionResponse{
		AccessToken:       sess.Token,
		TokenType:         "Bearer",
		ExpiresIn:         int(time.Until(sess.ExpiresAt).Seconds()),
		ExpiresAt:         sess.ExpiresAt,
		MustResetPassword: sess.MustResetPassword,
	})
}

// OTPRedeemHandler lets a one-time password session set a new password.
type OTPRedeemHandler struct {
	OTPService *service.OTPService
}

func (h *OTPRedeemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req qasdk.RedeemOTPRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	claims, _ := httpx.ClaimsFrom(ctx)
	ok, err := h.OTPService.RedeemRef(ctx, httpx.Username(ctx), claims.OTPRef, req.NewPassword)
	switch {
	case err != nil:
		writeServiceError(w, r, err)
	case !ok:
		// The code was consumed, expired or replaced after the session was
		// opened.
		qasdk.NewAPIError(http.StatusConflict, qasdk.ErrorCodeInvalidCredentials,
			"one-time password is no longer valid").WriteError(w)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
