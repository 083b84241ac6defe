package questions

import (
	"time"
)

// ID tipe untuk Question
type QuestionID string

// ID tipe untuk Attachment
type AttachmentID string

// Status enum
type Status string

const (
	StatusPending  Status = "pending"
	StatusAnswered Status = "answered"
)

// Aggregate Root: Question
// Question owns its Attachments; deleting a question deletes its attachments
type Question struct {
	ID        QuestionID `json:"id"`
	Title     string     `json:"title"`
	Response  string     `json:"response,omitempty"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at,omitempty"`
	Metadata  string     `json:"metadata,omitempty"`
}

// Attachment disimpan apa adanya, immutable setelah dibuat
type Attachment struct {
	ID         AttachmentID `json:"id"`
	QuestionID QuestionID   `json:"question_id"`
	Filename   string       `json:"filename"`
	FileType   string       `json:"file_type"`
	FileData   []byte       `json:"-"`
}

// RecentQuestion projection untuk dashboard
type RecentQuestion struct {
	ID              QuestionID `json:"id"`
	Title           string     `json:"title"`
	CreatedAt       time.Time  `json:"created_at"`
	AttachmentCount int        `json:"attachment_count"`
}

// DashboardStats rekap untuk dashboard read surface
type DashboardStats struct {
	TotalQuestions   int64             `json:"total_questions"`
	TotalAttachments int64             `json:"total_attachments"`
	RecentQuestions  []*RecentQuestion `json:"recent_questions"`
}
