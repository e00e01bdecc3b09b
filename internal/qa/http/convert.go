package http

import (
	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
	"github.com/aussiebroadwan/qaboard/pkg/qasdk"
)

func toUserResponse(u domain.User) qasdk.UserResponse {
	return qasdk.UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		MiddleInitial: u.MiddleInitial,
		Role:          u.Role.String(),
		CreatedAt:     u.CreatedAt,
	}
}

func toQuestionResponse(q domain.Question) qasdk.QuestionResponse {
	resp := qasdk.QuestionResponse{
		ID:          q.ID,
		Title:       q.Title,
		Content:     q.Content,
		AskedBy:     q.AskedBy,
		CreatedAt:   q.CreatedAt,
		IsResolved:  q.IsResolved,
		Closed:      q.Closed(),
		UnreadCount: q.UnreadCount,
	}
	if q.IsResolved && q.ResolvedAnswerID != domain.NoAnswer {
		id := q.ResolvedAnswerID
		resp.ResolvedAnswerID = &id
	}
	if len(q.Answers) > 0 {
		resp.Answers = make([]qasdk.AnswerResponse, 0, len(q.Answers))
		for _, a := range q.Answers {
			resp.Answers = append(resp.Answers, toAnswerResponse(a))
		}
	}
	return resp
}

func toAnswerResponse(a domain.Answer) qasdk.AnswerResponse {
	return qasdk.AnswerResponse{
		ID:         a.ID,
		QuestionID: a.QuestionID,
		Content:    a.Content,
		AnsweredBy: a.AnsweredBy,
		CreatedAt:  a.CreatedAt,
		IsRead:     a.IsRead,
		Upvotes:    a.Upvotes,
	}
}
