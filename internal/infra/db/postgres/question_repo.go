package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/questions"
)

type QuestionRepository struct{ db *sql.DB }

func NewQuestionRepository(db *sql.DB) *QuestionRepository { return &QuestionRepository{db: db} }

// Save insert/update Question record
func (r *QuestionRepository) Save(ctx context.Context, q *domain.Question) error {
	const query = `
INSERT INTO questions
(id, title, response, status, created_at, updated_at, metadata)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
 response = EXCLUDED.response,
 status = EXCLUDED.status,
 updated_at = EXCLUDED.updated_at,
 metadata = EXCLUDED.metadata;`

	status := string(q.Status)
	created := q.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	var updated any
	if !q.UpdatedAt.IsZero() {
		updated = q.UpdatedAt
	}

	_, err := r.db.ExecContext(ctx, query,
		q.ID, q.Title, q.Response, status, created, updated, q.Metadata,
	)
	return err
}

// Get by ID
func (r *QuestionRepository) Get(ctx context.Context, id domain.QuestionID) (*domain.Question, error) {
	const query = `
SELECT id, title, response, status, created_at, updated_at, metadata
FROM questions
WHERE id=$1
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, query, id)

	var q domain.Question
	var updated sql.NullTime
	if err := row.Scan(&q.ID, &q.Title, &q.Response, &q.Status, &q.CreatedAt, &updated, &q.Metadata); err != nil {
		return nil, err
	}
	if updated.Valid {
		q.UpdatedAt = updated.Time
	}
	return &q, nil
}

// Count total questions
func (r *QuestionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions;`).Scan(&count)
	return count, err
}

// RecentWithAttachmentCount projection untuk dashboard
func (r *QuestionRepository) RecentWithAttachmentCount(ctx context.Context, limit int) ([]*domain.RecentQuestion, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `
SELECT q.id, q.title, q.created_at, COUNT(a.id) AS attachment_count
FROM questions q
LEFT JOIN attachments a ON a.question_id = q.id
GROUP BY q.id, q.title, q.created_at
ORDER BY q.created_at DESC
LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.RecentQuestion
	for rows.Next() {
		var rq domain.RecentQuestion
		if err := rows.Scan(&rq.ID, &rq.Title, &rq.CreatedAt, &rq.AttachmentCount); err != nil {
			return nil, err
		}
		out = append(out, &rq)
	}
	return out, rows.Err()
}

// Delete hapus satu question row; attachments-nya sudah dihapus duluan
// oleh caller lewat AttachmentRepository.DeleteByQuestion
func (r *QuestionRepository) Delete(ctx context.Context, id domain.QuestionID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1;`, id)
	return err
}
