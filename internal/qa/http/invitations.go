package http

import (
	"net/http"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
	"github.com/aussiebroadwan/qaboard/internal/qa/service"
	"github.com/aussiebroadwan/qaboard/pkg/httpx"
	"github.com/aussiebroadwan/qaboard/pkg/qasdk"
)

// InviteMintHandler mints a registration code. Admin only.
type InviteMintHandler struct {
	InviteService *service.InviteService
}

func (h *InviteMintHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req qasdk.InviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	inv, err := h.InviteService.Mint(ctx, domain.Role(req.Role), req.TTLMinutes, httpx.Username(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, qasdk.InviteResponse{
		Code:      inv.Code,
		Role:      inv.Role.String(),
		CreatedBy: inv.CreatedBy,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
	})
}
