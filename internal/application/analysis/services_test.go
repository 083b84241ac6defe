package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/analysis"
	qdomain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/questions"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeAnalysisRepo struct {
	byToken map[domain.Token]domain.Analysis
	// statuses yang terlihat observer eksternal, urut per save
	seenStatuses []domain.Status
	saveErr      error
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{byToken: map[domain.Token]domain.Analysis{}}
}

func (r *fakeAnalysisRepo) Save(_ context.Context, a *domain.Analysis) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.byToken[a.Token] = *a
	r.seenStatuses = append(r.seenStatuses, a.Status)
	return nil
}

func (r *fakeAnalysisRepo) FindByToken(_ context.Context, token domain.Token) (*domain.Analysis, error) {
	a, ok := r.byToken[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (r *fakeAnalysisRepo) Recent(_ context.Context, limit int) ([]*domain.Analysis, error) {
	var out []*domain.Analysis
	for _, a := range r.byToken {
		a := a
		out = append(out, &a)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeQuestionRepo struct{ saved []qdomain.Question }

func (r *fakeQuestionRepo) Save(_ context.Context, q *qdomain.Question) error {
	r.saved = append(r.saved, *q)
	return nil
}

func (r *fakeQuestionRepo) Get(_ context.Context, _ qdomain.QuestionID) (*qdomain.Question, error) {
	return nil, sql.ErrNoRows
}

func (r *fakeQuestionRepo) Count(_ context.Context) (int64, error) { return 0, nil }

func (r *fakeQuestionRepo) RecentWithAttachmentCount(_ context.Context, _ int) ([]*qdomain.RecentQuestion, error) {
	return nil, nil
}

func (r *fakeQuestionRepo) Delete(_ context.Context, _ qdomain.QuestionID) error { return nil }

type fakeRunner struct {
	out []byte
	err error
}

func (f *fakeRunner) Run(_ context.Context, _ string) ([]byte, error) { return f.out, f.err }

type fakeArtifacts struct {
	uploads map[string][]byte
	err     error
}

func (f *fakeArtifacts) UploadBytes(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[key] = data
	return "http://minio.local/analyses/" + key, nil
}

func newTestService(repo *fakeAnalysisRepo, runner domain.Runner, artifacts domain.ArtifactStore) (*Service, *fakeQuestionRepo) {
	questions := &fakeQuestionRepo{}
	svc := &Service{
		Repo:      repo,
		Questions: questions,
		Runner:    runner,
		Artifacts: artifacts,
		Clock:     fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	return svc, questions
}

func TestRunDemoCompletes(t *testing.T) {
	repo := newFakeAnalysisRepo()
	svc, questions := newTestService(repo, nil, nil)

	envelope, err := svc.Run(context.Background(), RunCommand{URL: "example.com"})

	require.NoError(t, err)
	assert.Equal(t, "success", envelope["status"])
	assert.Equal(t, "demo", envelope["analysis_type"])
	assert.Equal(t, "https://example.com", envelope["url"])

	token := domain.Token(envelope["analysis_id"].(string))
	stored, err := repo.FindByToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedAt)
	assert.Empty(t, stored.ErrorMessage)

	// results blob harus valid JSON dengan envelope lengkap
	var roundtrip map[string]any
	require.NoError(t, json.Unmarshal([]byte(stored.ResultsJSON), &roundtrip))
	assert.Contains(t, roundtrip, "results")

	// record disimpan di tiap transisi
	assert.Equal(t, []domain.Status{domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted}, repo.seenStatuses)

	// question dashboard ikut dicatat
	require.Len(t, questions.saved, 1)
	assert.Equal(t, "Premium Auto Analysis: https://example.com", questions.saved[0].Title)
}

func TestRunLiveFailureMarksFailed(t *testing.T) {
	repo := newFakeAnalysisRepo()
	runner := &fakeRunner{err: errors.New("crawler run error: exit 1")}
	svc, _ := newTestService(repo, runner, nil)

	_, err := svc.Run(context.Background(), RunCommand{URL: "https://example.com", Live: true})

	var re *RunError
	require.ErrorAs(t, err, &re)

	stored, ferr := repo.FindByToken(context.Background(), re.Token)
	require.NoError(t, ferr)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Equal(t, "crawler run error: exit 1", stored.ErrorMessage)
	assert.NotNil(t, stored.CompletedAt)
	assert.Empty(t, stored.ResultsJSON)
}

func TestRunLiveUsesRunnerOutput(t *testing.T) {
	repo := newFakeAnalysisRepo()
	runner := &fakeRunner{out: []byte(`{"pages_crawled":12}`)}
	svc, _ := newTestService(repo, runner, nil)

	envelope, err := svc.Run(context.Background(), RunCommand{URL: "https://example.com", Live: true})

	require.NoError(t, err)
	assert.Equal(t, "real", envelope["analysis_type"])
	results := envelope["results"].(map[string]any)
	assert.Equal(t, float64(12), results["pages_crawled"])
}

func TestRunInitialSaveFailureHasNoFailedRecord(t *testing.T) {
	repo := newFakeAnalysisRepo()
	repo.saveErr = errors.New("db down")
	svc, _ := newTestService(repo, nil, nil)

	_, err := svc.Run(context.Background(), RunCommand{URL: "https://example.com"})

	var re *RunError
	require.ErrorAs(t, err, &re)
	// create-nya sendiri gagal: tidak ada record sama sekali, tanpa write kedua
	assert.Empty(t, repo.byToken)
}

func TestRunUploadsArtifactBestEffort(t *testing.T) {
	repo := newFakeAnalysisRepo()
	artifacts := &fakeArtifacts{}
	svc, _ := newTestService(repo, nil, artifacts)

	envelope, err := svc.Run(context.Background(), RunCommand{URL: "https://example.com"})
	require.NoError(t, err)

	token := domain.Token(envelope["analysis_id"].(string))
	stored, err := repo.FindByToken(context.Background(), token)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ResultsURL)
	assert.Len(t, artifacts.uploads, 1)
}

func TestRunArtifactFailureDoesNotFailRun(t *testing.T) {
	repo := newFakeAnalysisRepo()
	artifacts := &fakeArtifacts{err: errors.New("bucket gone")}
	svc, _ := newTestService(repo, nil, artifacts)

	envelope, err := svc.Run(context.Background(), RunCommand{URL: "https://example.com"})
	require.NoError(t, err)

	token := domain.Token(envelope["analysis_id"].(string))
	stored, err := repo.FindByToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Empty(t, stored.ResultsURL)
}
