package analysis

import (
	"fmt"
	"time"
)

// Token adalah correlation token, caller-visible ID untuk satu analysis run
type Token string

// Status enum tertutup; transisi dijaga lewat method Mark*
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Type enum
type Type string

const (
	TypeDemo Type = "DEMO"
	TypeReal Type = "REAL"
)

// Aggregate Root: Analysis
// Invariant: CompletedAt terisi iff status terminal,
// ErrorMessage hanya saat FAILED, ResultsJSON hanya saat COMPLETED.
type Analysis struct {
	Token        Token      `json:"analysis_id"`
	URL          string     `json:"url"`
	Status       Status     `json:"status"`
	Type         Type       `json:"analysis_type"`
	ResultsJSON  string     `json:"results_json,omitempty"`
	ResultsURL   string     `json:"results_url,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// New bikin record baru dengan status PENDING
func New(token Token, url string, typ Type, now time.Time) *Analysis {
	return &Analysis{
		Token:     token,
		URL:       url,
		Status:    StatusPending,
		Type:      typ,
		CreatedAt: now,
	}
}

// IsTerminal true kalau status sudah final
func (a *Analysis) IsTerminal() bool {
	switch a.Status {
	case StatusCompleted, StatusFailed:
		return true
	case StatusPending, StatusInProgress:
		return false
	}
	return false
}

// MarkInProgress transisi PENDING → IN_PROGRESS
func (a *Analysis) MarkInProgress() error {
	if a.Status != StatusPending {
		return fmt.Errorf("cannot start analysis in status %s", a.Status)
	}
	a.Status = StatusInProgress
	return nil
}

// MarkCompleted transisi IN_PROGRESS → COMPLETED, simpan hasil
func (a *Analysis) MarkCompleted(resultsJSON string, now time.Time) error {
	if a.Status != StatusInProgress {
		return fmt.Errorf("cannot complete analysis in status %s", a.Status)
	}
	a.Status = StatusCompleted
	a.ResultsJSON = resultsJSON
	a.CompletedAt = &now
	return nil
}

// MarkFailed transisi ke FAILED dengan pesan error
func (a *Analysis) MarkFailed(message string, now time.Time) error {
	if a.IsTerminal() {
		return fmt.Errorf("cannot fail analysis in status %s", a.Status)
	}
	a.Status = StatusFailed
	a.ErrorMessage = message
	a.CompletedAt = &now
	return nil
}
