package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
	"github.com/aussiebroadwan/qaboard/internal/qa/service"
	"github.com/aussiebroadwan/qaboard/pkg/httpx"
	"github.com/aussiebroadwan/qaboard/pkg/qasdk"
)

// RegisterHandler is the public sign-up endpoint. Every account but the
// first needs an invitation code.
type RegisterHandler struct {
	AccountService *service.AccountService
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req qasdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	u, err := h.AccountService.Register(r.Context(), domain.NewUser{
		Username:       req.Username,
		Password:       req.Password,
		Email:          req.Email,
		MiddleInitial:  req.MiddleInitial,
		InvitationCode: req.InvitationCode,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

// UsersHandler serves the admin user management endpoints.
type UsersHandler struct {
	AccountService *service.AccountService
	OTPService     *service.OTPService
}

func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.AccountService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := qasdk.UserListResponse{Users: make([]qasdk.UserResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req qasdk.CreateUserRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	u, err := h.AccountService.CreateUser(r.Context(), domain.NewUser{
		Username:      req.Username,
		Password:      req.Password,
		Email:         req.Email,
		MiddleInitial: req.MiddleInitial,
		Role:          domain.Role(req.Role),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := r.PathValue("username")

	ok, err := h.AccountService.DeleteUser(ctx, username)
	if err == nil && !ok {
		h.writeRefusal(w, r, username)
		return
	}
	writeOutcome(w, r, ok, err)
}

func (h *UsersHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := r.PathValue("username")

	var req qasdk.ChangeRoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	ok, err := h.AccountService.ChangeRole(ctx, username, role)
	if err == nil && !ok {
		h.writeRefusal(w, r, username)
		return
	}
	writeOutcome(w, r, ok, err)
}

// writeRefusal tells a missing user apart from last-admin protection, which
// the service reports with the same false.
func (h *UsersHandler) writeRefusal(w http.ResponseWriter, r *http.Request, username string) {
	_, exists, err := h.AccountService.GetUser(r.Context(), username)
	switch {
	case err != nil:
		writeServiceError(w, r, err)
	case exists:
		qasdk.ErrLastAdmin.WriteError(w)
	default:
		qasdk.ErrNotFound.WriteError(w)
	}
}

func (h *UsersHandler) HandleIssueOTP(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var req qasdk.IssueOTPRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	code, ok, err := h.OTPService.Issue(r.Context(), username, req.Code, req.TTLMinutes)
	if err != nil || !ok {
		writeOutcome(w, r, ok, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, qasdk.IssueOTPResponse{
		Username: strings.TrimSpace(username),
		Code:     code,
	})
}

// MeHandler serves the caller's own profile.
type MeHandler struct {
	AccountService *service.AccountService
}

func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, ok, err := h.AccountService.GetUser(ctx, httpx.Username(ctx))
	if err != nil || !ok {
		// The account was deleted while its session was still live.
		writeOutcome(w, r, ok, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *MeHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := httpx.Username(ctx)

	var req qasdk.UpdateMeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if req.Email != nil {
		ok, err := h.AccountService.UpdateEmail(ctx, username, *req.Email)
		if err != nil || !ok {
			writeOutcome(w, r, ok, err)
			return
		}
	}
	if req.MiddleInitial != nil {
		ok, err := h.AccountService.UpdateMiddleInitial(ctx, username, *req.MiddleInitial)
		if err != nil || !ok {
			writeOutcome(w, r, ok, err)
			return
		}
	}

	h.HandleGet(w, r)
}
