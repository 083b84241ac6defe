package questions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmdomain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/llm"
	domain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/questions"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeQuestionRepo struct {
	byID map[domain.QuestionID]domain.Question
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{byID: map[domain.QuestionID]domain.Question{}}
}

func (r *fakeQuestionRepo) Save(_ context.Context, q *domain.Question) error {
	r.byID[q.ID] = *q
	return nil
}

func (r *fakeQuestionRepo) Get(_ context.Context, id domain.QuestionID) (*domain.Question, error) {
	q, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &q, nil
}

func (r *fakeQuestionRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

func (r *fakeQuestionRepo) RecentWithAttachmentCount(_ context.Context, limit int) ([]*domain.RecentQuestion, error) {
	var out []*domain.RecentQuestion
	for _, q := range r.byID {
		out = append(out, &domain.RecentQuestion{ID: q.ID, Title: q.Title, CreatedAt: q.CreatedAt})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) Delete(_ context.Context, id domain.QuestionID) error {
	delete(r.byID, id)
	return nil
}

type fakeAttachmentRepo struct {
	saved      []domain.Attachment
	saveErr    error
	deletedFor []domain.QuestionID
	deleteErr  error
}

func (r *fakeAttachmentRepo) Save(_ context.Context, a *domain.Attachment) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, *a)
	return nil
}

func (r *fakeAttachmentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.saved)), nil
}

func (r *fakeAttachmentRepo) DeleteByQuestion(_ context.Context, id domain.QuestionID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedFor = append(r.deletedFor, id)
	return nil
}

type fakeLLM struct {
	lastPayload llmdomain.QueryPayload
	result      llmdomain.QueryResult
	err         error
}

func (c *fakeLLM) Query(_ context.Context, payload llmdomain.QueryPayload) (llmdomain.QueryResult, error) {
	c.lastPayload = payload
	if c.err != nil {
		return llmdomain.QueryResult{}, c.err
	}
	return c.result, nil
}

func newService(llm *fakeLLM) (*Service, *fakeQuestionRepo, *fakeAttachmentRepo) {
	repo := newFakeQuestionRepo()
	atts := &fakeAttachmentRepo{}
	svc := &Service{
		Repo:        repo,
		Attachments: atts,
		LLM:         llm,
		Clock:       fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	return svc, repo, atts
}

func TestSubmitRelaysAnswerAndStoresIt(t *testing.T) {
	raw := json.RawMessage(`{"answer":"use fewer form fields","sources":[]}`)
	llm := &fakeLLM{result: llmdomain.QueryResult{Answer: "use fewer form fields", Raw: raw}}
	svc, repo, _ := newService(llm)

	res, err := svc.Submit(context.Background(), SubmitCommand{Title: "Test"})

	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, raw, res.Body)

	q, err := repo.Get(context.Background(), domain.QuestionID(res.QuestionID))
	require.NoError(t, err)
	assert.Equal(t, "use fewer form fields", q.Response)
	assert.Equal(t, domain.StatusAnswered, q.Status)
	assert.False(t, q.UpdatedAt.IsZero())
}

func TestSubmitDegradesWhenLLMFails(t *testing.T) {
	llm := &fakeLLM{err: errors.New("connection refused")}
	svc, repo, _ := newService(llm)

	res, err := svc.Submit(context.Background(), SubmitCommand{Title: "Test"})

	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, DegradedMessage, res.Message)

	// question tetap tersimpan tanpa jawaban
	q, err := repo.Get(context.Background(), domain.QuestionID(res.QuestionID))
	require.NoError(t, err)
	assert.Empty(t, q.Response)
	assert.Equal(t, domain.StatusPending, q.Status)
}

func TestSubmitPersistsEveryAttachment(t *testing.T) {
	llm := &fakeLLM{result: llmdomain.QueryResult{Answer: "ok", Raw: json.RawMessage(`{"answer":"ok"}`)}}
	svc, _, atts := newService(llm)

	cmd := SubmitCommand{
		Title: "Test",
		Attachments: []UploadedFile{
			{Filename: "a.json", ContentType: "application/json", Data: []byte(`{broken`)},
			{Filename: "b.png", ContentType: "image/png", Data: []byte{0x89}},
			{Filename: "c.json", ContentType: "application/json", Data: []byte(`[{"x":1}]`)},
		},
	}

	_, err := svc.Submit(context.Background(), cmd)

	require.NoError(t, err)
	// semua file part tersimpan, terlepas dari hasil klasifikasi
	assert.Len(t, atts.saved, 3)
}

func TestSubmitEndToEndTrackedData(t *testing.T) {
	llm := &fakeLLM{result: llmdomain.QueryResult{Answer: "ok", Raw: json.RawMessage(`{"answer":"ok"}`)}}
	svc, _, _ := newService(llm)

	cmd := SubmitCommand{
		Title: "Test",
		Attachments: []UploadedFile{
			{Filename: "events.json", ContentType: "application/json", Data: []byte(`[{"x":1},{"x":2}]`)},
		},
	}

	_, err := svc.Submit(context.Background(), cmd)

	require.NoError(t, err)
	require.Len(t, llm.lastPayload.TrackedData, 2)
	assert.Equal(t, float64(1), llm.lastPayload.TrackedData[0]["x"])
	assert.Equal(t, float64(2), llm.lastPayload.TrackedData[1]["x"])
}

func TestSubmitIgnoresInvalidVisionAnalysis(t *testing.T) {
	llm := &fakeLLM{result: llmdomain.QueryResult{Answer: "ok", Raw: json.RawMessage(`{"answer":"ok"}`)}}
	svc, _, _ := newService(llm)

	_, err := svc.Submit(context.Background(), SubmitCommand{Title: "Test", VisionAnalysis: "not valid json"})

	require.NoError(t, err)
	assert.Nil(t, llm.lastPayload.Vision)
}

func TestSubmitToleratesAttachmentSaveFailure(t *testing.T) {
	llm := &fakeLLM{result: llmdomain.QueryResult{Answer: "ok", Raw: json.RawMessage(`{"answer":"ok"}`)}}
	svc, _, atts := newService(llm)
	atts.saveErr = errors.New("disk full")

	res, err := svc.Submit(context.Background(), SubmitCommand{
		Title:       "Test",
		Attachments: []UploadedFile{{Filename: "a.png", ContentType: "image/png", Data: []byte{1}}},
	})

	require.NoError(t, err)
	assert.False(t, res.Degraded)
}

func TestDirectQueryPropagatesFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("boom")}
	svc, _, _ := newService(llm)

	_, err := svc.DirectQuery(context.Background(), llmdomain.QueryPayload{Question: "q"})

	assert.Error(t, err)
}

func TestDeleteCascadesToAttachments(t *testing.T) {
	llm := &fakeLLM{result: llmdomain.QueryResult{Answer: "ok", Raw: json.RawMessage(`{"answer":"ok"}`)}}
	svc, repo, atts := newService(llm)

	res, err := svc.Submit(context.Background(), SubmitCommand{
		Title:       "Test",
		Attachments: []UploadedFile{{Filename: "a.png", ContentType: "image/png", Data: []byte{1}}},
	})
	require.NoError(t, err)

	id := domain.QuestionID(res.QuestionID)
	require.NoError(t, svc.Delete(context.Background(), id))

	_, err = repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Equal(t, []domain.QuestionID{id}, atts.deletedFor)
}

func TestDeleteAbortsWhenAttachmentDeleteFails(t *testing.T) {
	llm := &fakeLLM{result: llmdomain.QueryResult{Answer: "ok", Raw: json.RawMessage(`{"answer":"ok"}`)}}
	svc, repo, atts := newService(llm)

	res, err := svc.Submit(context.Background(), SubmitCommand{Title: "Test"})
	require.NoError(t, err)

	atts.deleteErr = errors.New("table locked")
	id := domain.QuestionID(res.QuestionID)
	assert.Error(t, svc.Delete(context.Background(), id))

	// question tidak boleh hilang selama child-nya belum kehapus
	_, err = repo.Get(context.Background(), id)
	assert.NoError(t, err)
}

func TestDashboardCounts(t *testing.T) {
	llm := &fakeLLM{result: llmdomain.QueryResult{Answer: "ok", Raw: json.RawMessage(`{"answer":"ok"}`)}}
	svc, _, _ := newService(llm)

	_, err := svc.Submit(context.Background(), SubmitCommand{
		Title:       "Test",
		Attachments: []UploadedFile{{Filename: "a.png", ContentType: "image/png", Data: []byte{1}}},
	})
	require.NoError(t, err)

	stats, err := svc.Dashboard(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalQuestions)
	assert.Equal(t, int64(1), stats.TotalAttachments)
}
