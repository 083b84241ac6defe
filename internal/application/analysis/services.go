package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/uxinsight-gateway/internal/application"
	domain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/analysis"
	qdomain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/questions"
)

// GenericErrorMessage dikembalikan ke caller saat run gagal; detail mentah
// ikut sebagai field kedua, pesan utama tidak bocorin internal.
const GenericErrorMessage = "Sorry for the inconvenience. This error is out of handling and will be resolved shortly."

// Service implements use-cases untuk Analysis lifecycle
type Service struct {
	Repo      domain.Repository
	Questions qdomain.Repository
	Runner    domain.Runner        // optional, untuk mode REAL
	Artifacts domain.ArtifactStore // optional, best-effort
	Clock     application.Clock
}

// Command untuk trigger analysis
type RunCommand struct {
	URL  string
	Live bool // true → jalankan crawler (REAL), default DEMO
}

// RunError membungkus kegagalan run; Token tetap dilaporkan ke caller
type RunError struct {
	Token domain.Token
	Err   error
}

func (e *RunError) Error() string { return e.Err.Error() }
func (e *RunError) Unwrap() error { return e.Err }

// Run satu analysis end-to-end: PENDING → IN_PROGRESS → COMPLETED/FAILED.
// Record disimpan di tiap transisi supaya observer eksternal bisa bedakan
// never-started / running / terminal walau proses mati di tengah jalan.
func (s *Service) Run(ctx context.Context, cmd RunCommand) (map[string]any, error) {
	url := normalizeURL(cmd.URL)
	token := domain.Token(uuid.New().String())

	typ := domain.TypeDemo
	if cmd.Live {
		typ = domain.TypeReal
	}

	// record PENDING disimpan sebelum langkah fallible apa pun.
	// kalau save ini sendiri gagal, run berhenti di sini tanpa record FAILED.
	a := domain.New(token, url, typ, s.Clock.Now())
	if err := s.Repo.Save(ctx, a); err != nil {
		return nil, &RunError{Token: token, Err: err}
	}

	if err := a.MarkInProgress(); err != nil {
		return nil, s.fail(ctx, token, err)
	}
	if err := s.Repo.Save(ctx, a); err != nil {
		return nil, s.fail(ctx, token, err)
	}

	results, err := s.produceResults(ctx, cmd.Live, url)
	if err != nil {
		return nil, s.fail(ctx, token, err)
	}

	envelope := map[string]any{
		"status":        "success",
		"message":       fmt.Sprintf("%s analysis completed", strings.ToLower(string(typ))),
		"url":           url,
		"analysis_type": strings.ToLower(string(typ)),
		"analysis_id":   string(token),
		"results":       results,
	}

	resultsJSON, err := json.Marshal(envelope)
	if err != nil {
		return nil, s.fail(ctx, token, err)
	}

	// upload blob hasil ke object storage, warn-only
	if s.Artifacts != nil {
		key := fmt.Sprintf("analyses/%s.json", token)
		if artifactURL, uerr := s.Artifacts.UploadBytes(ctx, key, resultsJSON, "application/json"); uerr != nil {
			log.Printf("warning: could not store results artifact token=%s: %v", token, uerr)
		} else {
			a.ResultsURL = artifactURL
		}
	}

	if err := a.MarkCompleted(string(resultsJSON), s.Clock.Now()); err != nil {
		return nil, s.fail(ctx, token, err)
	}
	if err := s.Repo.Save(ctx, a); err != nil {
		return nil, s.fail(ctx, token, err)
	}

	// catat juga sebagai Question di dashboard, best-effort
	q := &qdomain.Question{
		ID:        qdomain.QuestionID(uuid.New().String()),
		Title:     "Premium Auto Analysis: " + url,
		Status:    qdomain.StatusPending,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Questions.Save(ctx, q); err != nil {
		log.Printf("warning: could not record analysis question token=%s: %v", token, err)
	}

	return envelope, nil
}

// Get baca satu record by correlation token
func (s *Service) Get(ctx context.Context, token domain.Token) (*domain.Analysis, error) {
	return s.Repo.FindByToken(ctx, token)
}

// Recent ambil N record terakhir
func (s *Service) Recent(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.Repo.Recent(ctx, limit)
}

// fail terminasi record di FAILED. Kalau record tidak ketemu by token
// (misal create-nya sendiri yang gagal), cukup log, tanpa write kedua.
func (s *Service) fail(ctx context.Context, token domain.Token, cause error) error {
	a, err := s.Repo.FindByToken(ctx, token)
	if err != nil || a == nil {
		log.Printf("could not update analysis status token=%s: %v (cause: %v)", token, err, cause)
		return &RunError{Token: token, Err: cause}
	}
	if err := a.MarkFailed(cause.Error(), s.Clock.Now()); err != nil {
		log.Printf("could not mark analysis failed token=%s: %v", token, err)
		return &RunError{Token: token, Err: cause}
	}
	if err := s.Repo.Save(ctx, a); err != nil {
		log.Printf("could not persist failed analysis token=%s: %v", token, err)
	}
	return &RunError{Token: token, Err: cause}
}

func (s *Service) produceResults(ctx context.Context, live bool, url string) (map[string]any, error) {
	if live {
		if s.Runner == nil {
			return nil, fmt.Errorf("live analysis requested but no runner configured")
		}
		raw, err := s.Runner.Run(ctx, url)
		if err != nil {
			return nil, err
		}
		var results map[string]any
		if err := json.Unmarshal(raw, &results); err != nil {
			return nil, fmt.Errorf("invalid crawler output: %w", err)
		}
		return results, nil
	}
	return demoResults(), nil
}

// demoResults skor kalengan untuk mode DEMO
func demoResults() map[string]any {
	return map[string]any{
		"user_engagement_score":   78,
		"navigation_efficiency":   85,
		"conversion_optimization": 72,
		"mobile_responsiveness":   91,
		"load_time_optimization":  88,
		"recommendations": []string{
			"Consider adding more prominent call-to-action buttons",
			"Optimize images for faster loading times",
			"Improve mobile navigation menu accessibility",
			"Add breadcrumb navigation for better user orientation",
			"Consider implementing a search functionality",
		},
	}
}

func normalizeURL(url string) string {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "https://" + url
	}
	return url
}
