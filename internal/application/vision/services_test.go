package vision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/vision"
)

type fakeVisionClient struct {
	classifyRes map[string]any
	classifyErr error
	detectRes   map[string]any
	detectErr   error

	classifyCalls int
	detectCalls   int
}

func (c *fakeVisionClient) ClassifyScreen(_ context.Context, _ string, _ []byte) (map[string]any, error) {
	c.classifyCalls++
	return c.classifyRes, c.classifyErr
}

func (c *fakeVisionClient) DetectElements(_ context.Context, _ string, _ []byte) (map[string]any, error) {
	c.detectCalls++
	return c.detectRes, c.detectErr
}

func imageFile() File {
	return File{Filename: "shot.png", ContentType: "image/png", Data: []byte{0x89, 0x50}}
}

func TestAnalyzeNoImage(t *testing.T) {
	client := &fakeVisionClient{}
	svc := &Service{Client: client}

	_, err := svc.Analyze(context.Background(), []File{
		{Filename: "data.json", ContentType: "application/json", Data: []byte(`{}`)},
	})

	assert.ErrorIs(t, err, domain.ErrNoImage)
	// tidak boleh ada call yang dikirim
	assert.Zero(t, client.classifyCalls)
	assert.Zero(t, client.detectCalls)
}

func TestAnalyzeMergesBothResults(t *testing.T) {
	client := &fakeVisionClient{
		classifyRes: map[string]any{"type": "login"},
		detectRes:   map[string]any{"elements": []any{"button"}},
	}
	svc := &Service{Client: client}

	merged, err := svc.Analyze(context.Background(), []File{imageFile()})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "login"}, merged["classification"])
	assert.Equal(t, map[string]any{"elements": []any{"button"}}, merged["detections"])
}

func TestAnalyzePartialSuccess(t *testing.T) {
	client := &fakeVisionClient{
		classifyRes: map[string]any{"type": "login"},
		detectErr:   errors.New("timeout"),
	}
	svc := &Service{Client: client}

	merged, err := svc.Analyze(context.Background(), []File{imageFile()})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "login"}, merged["classification"])
	assert.NotContains(t, merged, "detections")
	// call yang gagal tidak menghalangi yang lain
	assert.Equal(t, 1, client.classifyCalls)
	assert.Equal(t, 1, client.detectCalls)
}

func TestAnalyzeBothFailGivesEmptyMerge(t *testing.T) {
	client := &fakeVisionClient{
		classifyErr: errors.New("502"),
		detectErr:   errors.New("timeout"),
	}
	svc := &Service{Client: client}

	merged, err := svc.Analyze(context.Background(), []File{imageFile()})

	require.NoError(t, err)
	assert.Empty(t, merged)
	assert.NotNil(t, merged)
}

func TestAnalyzePicksFirstImage(t *testing.T) {
	client := &fakeVisionClient{classifyRes: map[string]any{"type": "checkout"}}
	svc := &Service{Client: client}

	files := []File{
		{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("hi")},
		{Filename: "first.png", ContentType: "image/png", Data: []byte{1}},
		{Filename: "second.jpg", ContentType: "image/jpeg", Data: []byte{2}},
	}

	_, err := svc.Analyze(context.Background(), files)

	require.NoError(t, err)
	assert.Equal(t, 1, client.classifyCalls)
	assert.Equal(t, 1, client.detectCalls)
}
