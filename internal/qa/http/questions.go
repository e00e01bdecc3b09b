package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
	"github.com/aussiebroadwan/qaboard/internal/qa/service"
	"github.com/aussiebroadwan/qaboard/pkg/httpx"
	"github.com/aussiebroadwan/qaboard/pkg/qasdk"
)

// QuestionsHandler serves the question endpoints. Changes are scoped to the
// caller: a question asked by someone else looks the same as a missing one.
type QuestionsHandler struct {
	QuestionService *service.QuestionService
}

// HandleList answers GET /v1/questions. The q parameter searches, and takes
// precedence over unresolved=true, which takes precedence over owner.
func (h *QuestionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var (
		questions []domain.Question
		err       error
	)
	unresolved, _ := strconv.ParseBool(query.Get("unresolved"))
	switch {
	case query.Has("q"):
		questions, err = h.QuestionService.Search(ctx, query.Get("q"))
	case unresolved:
		questions, err = h.QuestionService.ListUnresolved(ctx)
	default:
		questions, err = h.QuestionService.List(ctx, query.Get("owner"))
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := qasdk.QuestionListResponse{Questions: make([]qasdk.QuestionResponse, 0, len(questions))}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, toQuestionResponse(q))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *QuestionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req qasdk.QuestionRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	q, err := h.QuestionService.Create(ctx, req.Title, req.Content, httpx.Username(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toQuestionResponse(q))
}

func (h *QuestionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	q, found, err := h.QuestionService.Get(r.Context(), id)
	if err != nil || !found {
		writeOutcome(w, r, found, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toQuestionResponse(q))
}

func (h *QuestionsHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req qasdk.QuestionRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	ok, err := h.QuestionService.Edit(ctx, id, req.Title, req.Content, httpx.Username(ctx))
	writeOutcome(w, r, ok, err)
}

func (h *QuestionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ok, err := h.QuestionService.Delete(ctx, id, httpx.Username(ctx))
	writeOutcome(w, r, ok, err)
}

func (h *QuestionsHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req qasdk.ResolveRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	ok, err := h.QuestionService.Resolve(ctx, id, req.AnswerID, httpx.Username(ctx))
	writeOutcome(w, r, ok, err)
}

func (h *QuestionsHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ok, err := h.QuestionService.Close(ctx, id, httpx.Username(ctx))
	writeOutcome(w, r, ok, err)
}

func (h *QuestionsHandler) HandleReopen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ok, err := h.QuestionService.Reopen(ctx, id, httpx.Username(ctx))
	writeOutcome(w, r, ok, err)
}
