package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
	"github.com/aussiebroadwan/qaboard/pkg/credential"
	"github.com/aussiebroadwan/qaboard/pkg/httpx"
	"github.com/aussiebroadwan/qaboard/pkg/qasdk"
	"github.com/aussiebroadwan/qaboard/pkg/slogx"
)

// writeServiceError maps an error returned by a service onto a response.
// Anything unrecognised is a storage failure and is not described to the
// caller.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var credErr *credential.Error
	switch {
	case errors.As(err, &credErr):
		qasdk.NewAPIError(http.StatusBadRequest, qasdk.ErrorCodeInvalidRequest, credErr.Result.Message).WriteError(w)
	case errors.Is(err, httpx.ErrInvalidBody),
		errors.Is(err, domain.ErrBlankField),
		errors.Is(err, domain.ErrLengthViolation),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrAdminInviteForbidden):
		qasdk.NewAPIError(http.StatusBadRequest, qasdk.ErrorCodeInvalidRequest, err.Error()).WriteError(w)
	case errors.Is(err, domain.ErrInvalidInvitationCode):
		qasdk.ErrInvalidInvitation.WriteError(w)
	case errors.Is(err, domain.ErrDuplicateUsername):
		qasdk.ErrDuplicateUsername.WriteError(w)
	case errors.Is(err, domain.ErrInvalidCredentials):
		qasdk.ErrInvalidCredentials.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		qasdk.ErrServerError.WriteError(w)
	}
}

// pathID parses the {id} path segment. It writes a 400 and returns false
// when the segment is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		qasdk.NewAPIError(http.StatusBadRequest, qasdk.ErrorCodeInvalidRequest, "id must be a positive integer").WriteError(w)
		return 0, false
	}
	return id, true
}

// writeOutcome answers a state change that reports success as a bool.
// A false outcome hides whether the resource is missing or not owned.
func writeOutcome(w http.ResponseWriter, r *http.Request, ok bool, err error) {
	switch {
	case err != nil:
		writeServiceError(w, r, err)
	case !ok:
		qasdk.ErrNotFound.WriteError(w)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
