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

type AnswerService struct {
	Store store.Store
	Now   func() time.Time
}

// Create posts an answer to questionID. It reports false when the question
// does not exist.
func (s *AnswerService) Create(ctx context.Context, questionID int64, content, answeredBy string) (domain.Answer, bool, error) {
	log := slogx.FromContext(ctx)

	content, err := domain.ValidateAnswerContent(content)
	if err != nil {
		return domain.Answer{}, false, err
	}
	answeredBy = strings.TrimSpace(answeredBy)
	if answeredBy == "" {
		return domain.Answer{}, false, &domain.BlankFieldError{Field: "answered_by"}
	}

	a := domain.Answer{
		QuestionID: questionID,
		Content:    content,
		AnsweredBy: answeredBy,
		CreatedAt:  clock(s.Now),
	}
	created := false
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Questions().GetByID(ctx, questionID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		id, err := tx.Answers().Create(ctx, a)
		if err != nil {
			return err
		}
		a.ID, created = id, true
		return nil
	})
	if err != nil {
		log.Error("failed to create answer", slog.Int64("question_id", questionID), slog.Any("error", err))
		return domain.Answer{}, false, err
	}
	if !created {
		log.Warn("answer to missing question", slog.Int64("question_id", questionID))
		return domain.Answer{}, false, nil
	}

	log.Info("answer created",
		slog.Int64("answer_id", a.ID),
		slog.Int64("question_id", questionID),
		slog.String("answered_by", answeredBy),
	)
	return a, true, nil
}

// Edit replaces the content of an answer owned by answeredBy.
func (s *AnswerService) Edit(ctx context.Context, id int64, content, answeredBy string) (bool, error) {
	content, err := domain.ValidateAnswerContent(content)
	if err != nil {
		return false, err
	}
	ok, err := s.Store.Answers().Update(ctx, id, answeredBy, content)
	return answerOutcome(ctx, "edit", id, ok, err)
}

func (s *AnswerService) Delete(ctx context.Context, id int64, answeredBy string) (bool, error) {
	ok, err := s.Store.Answers().Delete(ctx, id, answeredBy)
	return answerOutcome(ctx, "delete", id, ok, err)
}

// Upvote may be called by anyone.
func (s *AnswerService) Upvote(ctx context.Context, id int64) (bool, error) {
	ok, err := s.Store.Answers().IncrementUpvotes(ctx, id)
	return answerOutcome(ctx, "upvote", id, ok, err)
}

// MarkRead records that the asker has seen the answer. It may be called by
// anyone.
func (s *AnswerService) MarkRead(ctx context.Context, id int64) (bool, error) {
	ok, err := s.Store.Answers().MarkRead(ctx, id)
	return answerOutcome(ctx, "mark read", id, ok, err)
}

// List returns the answers of a question, most upvoted first.
func (s *AnswerService) List(ctx context.Context, questionID int64) ([]domain.Answer, error) {
	return s.Store.Answers().ListForQuestion(ctx, questionID)
}

func answerOutcome(ctx context.Context, op string, id int64, ok bool, err error) (bool, error) {
	log := slogx.FromContext(ctx)
	if err != nil {
		log.Error("answer "+op+" failed", slog.Int64("answer_id", id), slog.Any("error", err))
		return false, err
	}
	if !ok {
		log.Warn("answer "+op+" refused: missing or not owner", slog.Int64("answer_id", id))
	}
	return ok, nil
}
