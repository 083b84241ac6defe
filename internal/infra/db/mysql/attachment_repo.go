package mysql

import (
	"context"
	"database/sql"

	domain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/questions"
)

type AttachmentRepository struct {
	db *sql.DB
}

func NewAttachmentRepository(db *sql.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Save insert attachment; record immutable, tidak ada update path
func (r *AttachmentRepository) Save(ctx context.Context, a *domain.Attachment) error {
	const query = `
INSERT INTO attachments (id, question_id, filename, file_type, file_data)
VALUES (?,?,?,?,?);
`
	filename := dashIfEmpty(a.Filename)
	fileType := dashIfEmpty(a.FileType)

	_, err := r.db.ExecContext(ctx, query, a.ID, a.QuestionID, filename, fileType, a.FileData)
	return err
}

// Count total attachments
func (r *AttachmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attachments;`).Scan(&count)
	return count, err
}

// DeleteByQuestion hapus semua attachment milik satu question
func (r *AttachmentRepository) DeleteByQuestion(ctx context.Context, id domain.QuestionID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE question_id=?;`, id)
	return err
}
