package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/domain"
)

type questionsRepo struct {
	db dbtx
}

const questionColumns = `id, title, content, asked_by, created_at, is_resolved, resolved_answer_id`

func scanQuestion(row rowScanner) (domain.Question, error) {
	var q domain.Question
	err := row.Scan(&q.ID, &q.Title, &q.Content, &q.AskedBy, &q.CreatedAt, &q.IsResolved, &q.ResolvedAnswerID)
	return q, err
}

func (r *questionsRepo) query(ctx context.Context, op, query string, args ...any) ([]domain.Question, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		out = append(out, q)
	}
	return out, wrapErr(op, rows.Err())
}

func (r *questionsRepo) Create(ctx context.Context, q domain.Question) (int64, error) {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO questions (title, content, asked_by, created_at, is_resolved, resolved_answer_id)
		VALUES (?, ?, ?, ?, 0, ?)`,
		q.Title, q.Content, q.AskedBy, q.CreatedAt.UTC(), domain.NoAnswer,
	)
	if err != nil {
		return 0, wrapErr("create question", err)
	}
	id, err := res.LastInsertId()
	return id, wrapErr("create question", err)
}

func (r *questionsRepo) GetByID(ctx context.Context, id int64) (domain.Question, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if err != nil {
		return domain.Question{}, wrapErr("get question", err)
	}
	return q, nil
}

func (r *questionsRepo) List(ctx context.Context, owner string) ([]domain.Question, error) {
	if owner == "" {
		return r.query(ctx, "list questions",
			`SELECT `+questionColumns+` FROM questions ORDER BY created_at DESC, id DESC`)
	}
	return r.query(ctx, "list questions",
		`SELECT `+questionColumns+` FROM questions WHERE asked_by = ? ORDER BY created_at DESC, id DESC`,
		owner)
}

func (r *questionsRepo) ListUnresolved(ctx context.Context) ([]domain.Question, error) {
	return r.query(ctx, "list unresolved",
		`SELECT `+questionColumns+` FROM questions WHERE is_resolved = 0 ORDER BY created_at DESC, id DESC`)
}

func (r *questionsRepo) Search(ctx context.Context, keyword string) ([]domain.Question, error) {
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	return r.query(ctx, "search questions", `
		SELECT `+questionColumns+` FROM questions
		WHERE `+unicodeLower+`(title) LIKE ? ESCAPE '\' OR `+unicodeLower+`(content) LIKE ? ESCAPE '\'
		ORDER BY created_at DESC, id DESC`,
		pattern, pattern)
}

func (r *questionsRepo) Update(ctx context.Context, id int64, owner, title, content string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE questions SET title = ?, content = ? WHERE id = ? AND asked_by = ?`,
		title, content, id, owner)
	return affected("update question", res, err)
}

func (r *questionsRepo) Delete(ctx context.Context, id int64, owner string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM questions WHERE id = ? AND asked_by = ?`, id, owner)
	return affected("delete question", res, err)
}

func (r *questionsRepo) SetResolved(
	ctx context.Context,
	id int64,
	owner string,
	answerID *int64,
	resolved bool,
) (bool, error) {
	if answerID == nil {
		res, err := r.db.ExecContext(ctx,
			`UPDATE questions SET is_resolved = ? WHERE id = ? AND asked_by = ?`,
			resolved, id, owner)
		return affected("set resolved", res, err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE questions SET is_resolved = ?, resolved_answer_id = ? WHERE id = ? AND asked_by = ?`,
		resolved, *answerID, id, owner)
	return affected("set resolved", res, err)
}

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
