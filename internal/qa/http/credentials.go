package http

import (
	"net/http"

	"github.com/aussiebroadwan/qaboard/pkg/credential"
	"github.com/aussiebroadwan/qaboard/pkg/httpx"
	"github.com/aussiebroadwan/qaboard/pkg/qasdk"
)

// CredentialCheckHandler runs the credential scan on a candidate value. It
// always answers 200 for a well-formed request; the verdict is in the body.
type CredentialCheckHandler struct{}

func (h *CredentialCheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req qasdk.CredentialCheckRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var res credential.Result
	switch req.Kind {
	case qasdk.KindUsername:
		res = credential.EvaluateUsername(req.Value)
	default:
		res = credential.EvaluatePassword(req.Value)
	}
	httpx.WriteJSON(w, http.StatusOK, qasdk.NewCredentialCheckResponse(res))
}
