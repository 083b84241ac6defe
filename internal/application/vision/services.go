package vision

import (
	"context"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	domain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/vision"
)

// Service implements use-case vision fan-out
type Service struct {
	Client domain.Client
}

// File satu file part dari caller
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Analyze pilih image pertama lalu fan-out ke classify_screen dan analyze.
// Kedua call independen: gagal satu tidak menghalangi yang lain. Hasil merge
// hanya berisi key yang sukses; dua-duanya gagal → object kosong, bukan error.
// Tanpa image sama sekali → ErrNoImage, tidak ada call yang dikirim.
func (s *Service) Analyze(ctx context.Context, files []File) (map[string]any, error) {
	var image *File
	for i := range files {
		if strings.HasPrefix(files[i].ContentType, "image/") {
			image = &files[i]
			break
		}
	}
	if image == nil {
		return nil, domain.ErrNoImage
	}

	var classification, detections map[string]any

	// error diserap per-call supaya group tidak pernah cancel call lainnya
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.Client.ClassifyScreen(gctx, image.Filename, image.Data)
		if err != nil {
			log.Printf("vision classify_screen failed: %v", err)
			return nil
		}
		classification = res
		return nil
	})
	g.Go(func() error {
		res, err := s.Client.DetectElements(gctx, image.Filename, image.Data)
		if err != nil {
			log.Printf("vision analyze failed: %v", err)
			return nil
		}
		detections = res
		return nil
	})
	_ = g.Wait()

	merged := map[string]any{}
	if classification != nil {
		merged["classification"] = classification
	}
	if detections != nil {
		merged["detections"] = detections
	}
	return merged, nil
}
