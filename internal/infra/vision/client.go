package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	envBaseURL     = "APP_VISION_BASE_URL"
	defaultBaseURL = "http://localhost:8001"
)

// Client HTTP untuk vision service.
// Kedua endpoint menerima satu multipart field "file" berisi bytes gambar.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

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

// ClassifyScreen POST {base}/classify_screen
func (c *Client) ClassifyScreen(ctx context.Context, filename string, data []byte) (map[string]any, error) {
	return c.postFile(ctx, "/classify_screen", filename, data)
}

// DetectElements POST {base}/analyze
func (c *Client) DetectElements(ctx context.Context, filename string, data []byte) (map[string]any, error) {
	return c.postFile(ctx, "/analyze", filename, data)
}

func (c *Client) postFile(ctx context.Context, path, filename string, data []byte) (map[string]any, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base()+path, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vision %s: status %d", path, resp.StatusCode)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("vision %s: invalid response body: %w", path, err)
	}
	return out, nil
}
