package vision

import (
	"context"
	"errors"
)

// ErrNoImage : request tidak membawa attachment bertipe image/*.
// Ini client error, bukan partial failure.
var ErrNoImage = errors.New("no image file provided")

// Client port untuk vision backend.
// Kedua call menerima bytes gambar yang sama dan independen satu sama lain.
type Client interface {
	ClassifyScreen(ctx context.Context, filename string, data []byte) (map[string]any, error)
	DetectElements(ctx context.Context, filename string, data []byte) (map[string]any, error)
}
