package questions

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, q *Question) error
	Get(ctx context.Context, id QuestionID) (*Question, error)
	Count(ctx context.Context) (int64, error)
	RecentWithAttachmentCount(ctx context.Context, limit int) ([]*RecentQuestion, error)

	// Delete menghapus satu question row; child attachments dihapus duluan
	// lewat AttachmentRepository.DeleteByQuestion (explicit cascade di service)
	Delete(ctx context.Context, id QuestionID) error
}

// AttachmentRepository port untuk child records
type AttachmentRepository interface {
	Save(ctx context.Context, a *Attachment) error
	Count(ctx context.Context) (int64, error)
	DeleteByQuestion(ctx context.Context, id QuestionID) error
}
