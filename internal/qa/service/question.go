package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
	"github.com/aussiebroadwan/qaboard/internal/qa/store"
	"github.com/aussiebroadwan/qaboard/pkg/slogx"
)

type QuestionService struct {
	Store store.Store
	Now   func() time.Time
}

// Create validates and stores a new question.
func (s *QuestionService) Create(ctx context.Context, title, content, askedBy string) (domain.Question, error) {
	log := slogx.FromContext(ctx)

	q, err := validateQuestion(title, content)
	if err != nil {
		return domain.Question{}, err
	}
	if q.AskedBy = strings.TrimSpace(askedBy); q.AskedBy == "" {
		return domain.Question{}, &domain.BlankFieldError{Field: "asked_by"}
	}
	q.CreatedAt = clock(s.Now)
	q.ResolvedAnswerID = domain.NoAnswer

	id, err := s.Store.Questions().Create(ctx, q)
	if err != nil {
		log.Error("failed to create question", slog.Any("error", err))
		return domain.Question{}, err
	}
	q.ID = id

	log.Info("question created", slog.Int64("question_id", id), slog.String("asked_by", q.AskedBy))
	return q, nil
}

func validateQuestion(title, content string) (domain.Question, error) {
	t, err := domain.ValidateQuestionTitle(title)
	if err != nil {
		return domain.Question{}, err
	}
	c, err := domain.ValidateQuestionContent(content)
	if err != nil {
		return domain.Question{}, err
	}
	return domain.Question{Title: t, Content: c}, nil
}

// Edit replaces title and content. Only the asker may edit; anyone else,
// or a missing question, gets false.
func (s *QuestionService) Edit(ctx context.Context, id int64, title, content, askedBy string) (bool, error) {
	q, err := validateQuestion(title, content)
	if err != nil {
		return false, err
	}
	ok, err := s.Store.Questions().Update(ctx, id, askedBy, q.Title, q.Content)
	return s.outcome(ctx, "edit", id, askedBy, ok, err)
}

// Resolve marks the question resolved by answerID.
func (s *QuestionService) Resolve(ctx context.Context, id, answerID int64, askedBy string) (bool, error) {
	ok, err := s.Store.Questions().SetResolved(ctx, id, askedBy, &answerID, true)
	return s.outcome(ctx, "resolve", id, askedBy, ok, err)
}

// Close marks the question done without accepting an answer. The
// previously accepted answer, if any, is kept.
func (s *QuestionService) Close(ctx context.Context, id int64, askedBy string) (bool, error) {
	ok, err := s.Store.Questions().SetResolved(ctx, id, askedBy, nil, true)
	return s.outcome(ctx, "close", id, askedBy, ok, err)
}

// Reopen marks the question unresolved and clears the accepted answer.
func (s *QuestionService) Reopen(ctx context.Context, id int64, askedBy string) (bool, error) {
	none := domain.NoAnswer
	ok, err := s.Store.Questions().SetResolved(ctx, id, askedBy, &none, false)
	return s.outcome(ctx, "reopen", id, askedBy, ok, err)
}

// Delete removes the question together with all of its answers.
func (s *QuestionService) Delete(ctx context.Context, id int64, askedBy string) (bool, error) {
	deleted := false
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		q, err := tx.Questions().GetByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if q.AskedBy != askedBy {
			return nil
		}
		if _, err := tx.Answers().DeleteForQuestion(ctx, id); err != nil {
			return err
		}
		deleted, err = tx.Questions().Delete(ctx, id, askedBy)
		return err
	})
	return s.outcome(ctx, "delete", id, askedBy, deleted, err)
}

// outcome logs the result of an owner-scoped mutation.
func (s *QuestionService) outcome(ctx context.Context, op string, id int64, by string, ok bool, err error) (bool, error) {
	log := slogx.FromContext(ctx)
	switch {
	case err != nil:
		log.Error("question "+op+" failed", slog.Int64("question_id", id), slog.Any("error", err))
		return false, err
	case !ok:
		log.Warn("question "+op+" refused: missing or not owner",
			slog.Int64("question_id", id),
			slog.String("by", by),
		)
	default:
		log.Info("question "+op, slog.Int64("question_id", id), slog.String("by", by))
	}
	return ok, nil
}

// Get returns a question with its answers and unread count. It reports
// false when the question does not exist.
func (s *QuestionService) Get(ctx context.Context, id int64) (domain.Question, bool, error) {
	q, err := s.Store.Questions().GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Question{}, false, nil
	}
	if err != nil {
		return domain.Question{}, false, err
	}
	if q.Answers, err = s.Store.Answers().ListForQuestion(ctx, id); err != nil {
		return domain.Question{}, false, err
	}
	if q.UnreadCount, err = s.Store.Answers().CountUnread(ctx, id); err != nil {
		return domain.Question{}, false, err
	}
	return q, true, nil
}

// List returns questions newest first; an empty owner lists all.
func (s *QuestionService) List(ctx context.Context, owner string) ([]domain.Question, error) {
	return s.Store.Questions().List(ctx, strings.TrimSpace(owner))
}

func (s *QuestionService) ListUnresolved(ctx context.Context) ([]domain.Question, error) {
	return s.Store.Questions().ListUnresolved(ctx)
}

// Search matches keyword against title and content ignoring case. A blank
// keyword lists every question.
func (s *QuestionService) Search(ctx context.Context, keyword string) ([]domain.Question, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.List(ctx, "")
	}
	return s.Store.Questions().Search(ctx, keyword)
}
