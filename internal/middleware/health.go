package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker satu dependency yang bisa di-probe
type HealthChecker interface {
	Check(ctx context.Context) error
}

// DatabaseHealthChecker ping database utama
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.DB.PingContext(ctx)
}

// CheckerFunc adapts a plain func into a HealthChecker
// (dipakai buat dependency tanpa ping bawaan, misal object storage)
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

type healthReport struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]checkResult `json:"checks"`
}

type checkResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Message   string `json:"message,omitempty"`
}

// HealthHandler jalankan semua checker dan lapor agregatnya.
// Satu dependency down → 503, sisanya tetap dilaporkan per-check.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report := healthReport{
			Status:    "healthy",
			Timestamp: time.Now(),
			Checks:    make(map[string]checkResult),
		}

		for name, checker := range checkers {
			started := time.Now()
			err := checker.Check(ctx)
			result := checkResult{
				Status:    "healthy",
				LatencyMS: time.Since(started).Milliseconds(),
			}
			if err != nil {
				report.Status = "unhealthy"
				result.Status = "unhealthy"
				result.Message = err.Error()
			}
			report.Checks[name] = result
		}

		code := http.StatusOK
		if report.Status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
	}
}

// ReadinessHandler cek ringan, tidak menyentuh dependency
func ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessHandler proses hidup = ok
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
