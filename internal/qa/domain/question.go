package domain

import "time"

// NoAnswer marks a question without an accepted answer.
const NoAnswer int64 = -1

type Question struct {
	ID               int64
	Title            string
	Content          string
	AskedBy          string
	CreatedAt        time.Time
	IsResolved       bool
	ResolvedAnswerID int64
	Answers          []Answer
	UnreadCount      int
}

// Closed reports a question marked done without an accepted answer.
func (q Question) Closed() bool {
	return q.IsResolved && q.ResolvedAnswerID == NoAnswer
}

type Answer struct {
	ID         int64
	QuestionID int64
	Content    string
	AnsweredBy string
	CreatedAt  time.Time
	IsRead     bool
	Upvotes    int
}

type InvitationCode struct {
	Code      string
	Role      Role
	CreatedBy string
	IsUsed    bool
	UsedBy    string
	ExpiresAt *time.Time
	CreatedAt time.Time
}
