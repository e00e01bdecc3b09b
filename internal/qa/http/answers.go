package http

import (
	"net/http"

	"github.com/aussiebroadwan/qaboard/internal/qa/service"
	"github.com/aussiebroadwan/qaboard/pkg/httpx"
	"github.com/aussiebroadwan/qaboard/pkg/qasdk"
)

type AnswersHandler struct {
	AnswerService *service.AnswerService
}

// HandleList answers GET /v1/questions/{id}/answers, best answers first.
func (h *AnswersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	answers, err := h.AnswerService.List(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := qasdk.AnswerListResponse{Answers: make([]qasdk.AnswerResponse, 0, len(answers))}
	for _, a := range answers {
		resp.Answers = append(resp.Answers, toAnswerResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *AnswersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	questionID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req qasdk.AnswerRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	a, found, err := h.AnswerService.Create(ctx, questionID, req.Content, httpx.Username(ctx))
	if err != nil || !found {
		writeOutcome(w, r, found, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toAnswerResponse(a))
}

func (h *AnswersHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req qasdk.AnswerRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	ok, err := h.AnswerService.Edit(ctx, id, req.Content, httpx.Username(ctx))
	writeOutcome(w, r, ok, err)
}

func (h *AnswersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ok, err := h.AnswerService.Delete(ctx, id, httpx.Username(ctx))
	writeOutcome(w, r, ok, err)
}

func (h *AnswersHandler) HandleUpvote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ok, err := h.AnswerService.Upvote(r.Context(), id)
	writeOutcome(w, r, ok, err)
}

func (h *AnswersHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ok, err := h.AnswerService.MarkRead(r.Context(), id)
	writeOutcome(w, r, ok, err)
}
