package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/analysis"
)

type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

// Save insert/update Analysis record, keyed by correlation token
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const query = `
INSERT INTO analyses
(token, url, status, analysis_type, results_json, results_url, error_message, created_at, completed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (token) DO UPDATE SET
 status = EXCLUDED.status,
 results_json = EXCLUDED.results_json,
 results_url = EXCLUDED.results_url,
 error_message = EXCLUDED.error_message,
 completed_at = EXCLUDED.completed_at;`

	status := string(a.Status)
	typ := string(a.Type)
	// results_json nullable; record non-terminal belum punya hasil
	results := nullIfBlank(a.ResultsJSON)
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	var completed any
	if a.CompletedAt != nil {
		completed = *a.CompletedAt
	}

	_, err := r.db.ExecContext(ctx, query,
		a.Token, a.URL, status, typ, results, a.ResultsURL, a.ErrorMessage, created, completed,
	)
	return err
}

// FindByToken ambil 1 record by correlation token
func (r *AnalysisRepository) FindByToken(ctx context.Context, token domain.Token) (*domain.Analysis, error) {
	const query = `
SELECT token, url, status, analysis_type, results_json, results_url, error_message, created_at, completed_at
FROM analyses
WHERE token=$1
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, query, token)
	return scanAnalysis(row.Scan)
}

// Recent ambil N record terakhir
func (r *AnalysisRepository) Recent(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
SELECT token, url, status, analysis_type, results_json, results_url, error_message, created_at, completed_at
FROM analyses
ORDER BY created_at DESC, token DESC
LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAnalysis(scan func(dest ...any) error) (*domain.Analysis, error) {
	var a domain.Analysis
	var results sql.NullString
	var completed sql.NullTime
	if err := scan(
		&a.Token, &a.URL, &a.Status, &a.Type,
		&results, &a.ResultsURL, &a.ErrorMessage,
		&a.CreatedAt, &completed,
	); err != nil {
		return nil, err
	}
	a.ResultsJSON = results.String
	if completed.Valid {
		t := completed.Time
		a.CompletedAt = &t
	}
	return &a, nil
}
