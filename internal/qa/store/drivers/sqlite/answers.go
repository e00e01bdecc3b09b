package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
)

type answersRepo struct {
	db dbtx
}

const answerColumns = `id, question_id, content, answered_by, created_at, is_read, upvotes`

func scanAnswer(row rowScanner) (domain.Answer, error) {
	var a domain.Answer
	err := row.Scan(&a.ID, &a.QuestionID, &a.Content, &a.AnsweredBy, &a.CreatedAt, &a.IsRead, &a.Upvotes)
	return a, err
}

func (r *answersRepo) Create(ctx context.Context, a domain.Answer) (int64, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO answers (question_id, content, answered_by, created_at, is_read, upvotes)
		VALUES (?, ?, ?, ?, 0, 0)`,
		a.QuestionID, a.Content, a.AnsweredBy, a.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, wrapErr("create answer", err)
	}
	id, err := res.LastInsertId()
	return id, wrapErr("create answer", err)
}

func (r *answersRepo) GetByID(ctx context.Context, id int64) (domain.Answer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+answerColumns+` FROM answers WHERE id = ?`, id)
	a, err := scanAnswer(row)
	if err != nil {
		return domain.Answer{}, wrapErr("get answer", err)
	}
	return a, nil
}

func (r *answersRepo) ListForQuestion(ctx context.Context, questionID int64) ([]domain.Answer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+answerColumns+` FROM answers
		WHERE question_id = ?
		ORDER BY upvotes DESC, created_at ASC, id ASC`,
		questionID)
	if err != nil {
		return nil, wrapErr("list answers", err)
	}
	defer rows.Close()

	var out []domain.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, wrapErr("list answers", err)
		}
		out = append(out, a)
	}
	return out, wrapErr("list answers", rows.Err())
}

func (r *answersRepo) Update(ctx context.Context, id int64, owner, content string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE answers SET content = ? WHERE id = ? AND answered_by = ?`, content, id, owner)
	return affected("update answer", res, err)
}

func (r *answersRepo) Delete(ctx context.Context, id int64, owner string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM answers WHERE id = ? AND answered_by = ?`, id, owner)
	return affected("delete answer", res, err)
}

func (r *answersRepo) DeleteForQuestion(ctx context.Context, questionID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM answers WHERE question_id = ?`, questionID)
	return rowsAffected("delete answers", res, err)
}

func (r *answersRepo) IncrementUpvotes(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE answers SET upvotes = upvotes + 1 WHERE id = ?`, id)
	return affected("upvote answer", res, err)
}

func (r *answersRepo) MarkRead(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE answers SET is_read = 1 WHERE id = ?`, id)
	return affected("mark read", res, err)
}

func (r *answersRepo) CountUnread(ctx context.Context, questionID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM answers WHERE question_id = ? AND is_read = 0`, questionID,
	).Scan(&n)
	return n, wrapErr("count unread", err)
}
