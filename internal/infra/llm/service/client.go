package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	domain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/llm"
)

const (
	envBaseURL     = "APP_LLM_BASE_URL"
	defaultBaseURL = "http://localhost:8000"
)

// Client HTTP untuk LLM query service (POST {base}/query)
type Client struct {
	baseURL string
	http    *http.Client
}

// New bikin client; timeout 0 = default transport
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// base resolve URL saat call: env > config > default localhost,
// trailing slash dinormalisasi sebelum concat path
func (c *Client) base() string {
	base := c.baseURL
	if v := os.Getenv(envBaseURL); v != "" {
		base = v
	}
	if base == "" {
		base = defaultBaseURL
	}
	return strings.TrimSuffix(base, "/")
}

func (c *Client) Query(ctx context.Context, payload domain.QueryPayload) (domain.QueryResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.QueryResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base()+"/query", bytes.NewReader(body))
	if err != nil {
		return domain.QueryResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.QueryResult{}, fmt.Errorf("%w: status %d", domain.ErrUnavailable, resp.StatusCode)
	}

	// ambil answer, sisanya opaque pass-through
	var parsed struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return domain.QueryResult{}, fmt.Errorf("%w: invalid response body", domain.ErrUnavailable)
	}

	return domain.QueryResult{Answer: parsed.Answer, Raw: raw}, nil
}
