package questions

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"github.com/bryanwahyu/uxinsight-gateway/internal/application"
	llmdomain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/llm"
	domain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/questions"
)

// DegradedMessage dikembalikan saat question tersimpan tapi call LLM gagal.
const DegradedMessage = "Question saved, but LLM call failed"

// Service implements use-cases untuk Question submission
// Service is designed to be used concurrently and is thread-safe
type Service struct {
	Repo        domain.Repository
	Attachments domain.AttachmentRepository
	LLM         llmdomain.Client
	Clock       application.Clock
}

//
// ==== USE CASES ====
//

// UploadedFile satu file part dari multipart request
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Command untuk submit question
type SubmitCommand struct {
	Title          string
	Attachments    []UploadedFile
	VisionAnalysis string // serialized JSON array, optional
}

type SubmitResult struct {
	QuestionID string          `json:"question_id"`
	Degraded   bool            `json:"degraded"`
	Body       json.RawMessage `json:"body,omitempty"`
	Message    string          `json:"message,omitempty"`
}

// Submit persist question + attachments, rakit payload, panggil LLM sekali.
// Kegagalan call LLM tidak menggagalkan request: question sudah tersimpan,
// response diturunkan jadi degraded success.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (SubmitResult, error) {
	now := s.Clock.Now()
	q := &domain.Question{
		ID:        domain.QuestionID(uuid.New().String()),
		Title:     cmd.Title,
		Status:    domain.StatusPending,
		CreatedAt: now,
	}
	if err := s.Repo.Save(ctx, q); err != nil {
		return SubmitResult{}, err
	}

	// simpan semua attachment apa adanya, sebelum klasifikasi.
	// gagal simpan satu file tidak di-rollback dan tidak menghentikan sisanya.
	for _, f := range cmd.Attachments {
		att := &domain.Attachment{
			ID:         domain.AttachmentID(uuid.New().String()),
			QuestionID: q.ID,
			Filename:   f.Filename,
			FileType:   f.ContentType,
			FileData:   f.Data,
		}
		if err := s.Attachments.Save(ctx, att); err != nil {
			log.Printf("attachment save failed question=%s file=%s: %v", q.ID, f.Filename, err)
		}
	}

	payload := AssemblePayload(cmd.Title, ExtractTrackedData(cmd.Attachments), cmd.VisionAnalysis)

	res, err := s.LLM.Query(ctx, payload)
	if err != nil {
		log.Printf("llm call failed question=%s: %v", q.ID, err)
		return SubmitResult{QuestionID: string(q.ID), Degraded: true, Message: DegradedMessage}, nil
	}

	q.Response = res.Answer
	q.Status = domain.StatusAnswered
	q.UpdatedAt = s.Clock.Now()
	if err := s.Repo.Save(ctx, q); err != nil {
		log.Printf("question update failed question=%s: %v", q.ID, err)
	}

	return SubmitResult{QuestionID: string(q.ID), Body: res.Raw}, nil
}

// DirectQuery pass-through ke LLM backend, tetap dicatat sebagai Question.
// Di endpoint ini kegagalan downstream diteruskan ke caller, bukan degraded.
func (s *Service) DirectQuery(ctx context.Context, payload llmdomain.QueryPayload) (llmdomain.QueryResult, error) {
	q := &domain.Question{
		ID:        domain.QuestionID(uuid.New().String()),
		Title:     payload.Question,
		Status:    domain.StatusPending,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Repo.Save(ctx, q); err != nil {
		return llmdomain.QueryResult{}, err
	}

	res, err := s.LLM.Query(ctx, payload)
	if err != nil {
		return llmdomain.QueryResult{}, err
	}

	q.Response = res.Answer
	q.Status = domain.StatusAnswered
	q.UpdatedAt = s.Clock.Now()
	if err := s.Repo.Save(ctx, q); err != nil {
		log.Printf("question update failed question=%s: %v", q.ID, err)
	}
	return res, nil
}

// Dashboard rekap counts + recent questions
func (s *Service) Dashboard(ctx context.Context, recentLimit int) (*domain.DashboardStats, error) {
	if recentLimit <= 0 {
		recentLimit = 5
	}
	totalQ, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalA, err := s.Attachments.Count(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.Repo.RecentWithAttachmentCount(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	return &domain.DashboardStats{
		TotalQuestions:   totalQ,
		TotalAttachments: totalA,
		RecentQuestions:  recent,
	}, nil
}

// Delete hapus question beserta attachments-nya.
// Ownership ditegakkan eksplisit di sini, bukan lewat cascade di schema:
// attachments dihapus dulu, kalau gagal question-nya tidak disentuh.
func (s *Service) Delete(ctx context.Context, id domain.QuestionID) error {
	if err := s.Attachments.DeleteByQuestion(ctx, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}
