package crawler

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// defaultImage crawler headless yang nulis hasil analisis sebagai JSON
const defaultImage = "uxinsight/web-crawler:latest"

// Runner jalankan crawl container terhadap satu URL dan baca artefak JSON-nya.
// Dipakai untuk analysis mode REAL; mode DEMO tidak lewat sini.
type Runner struct {
	image      string
	randSource *rand.Rand
}

func NewRunner(image string) *Runner {
	if image == "" {
		image = defaultImage
	}
	// Create a dedicated random source to avoid contention
	src := rand.NewSource(time.Now().UnixNano())
	return &Runner{
		image:      image,
		randSource: rand.New(src),
	}
}

// artifactDir resolve ./temp ke path absolut. Source bind mount docker
// wajib absolut; path relatif dianggap nama volume, bukan host dir.
func artifactDir() (string, error) {
	return filepath.Abs(filepath.Join(".", "temp"))
}

func (r *Runner) Run(ctx context.Context, url string) ([]byte, error) {
	tempDir, err := artifactDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, err
	}
	artifactPath := filepath.Join(tempDir, fmt.Sprintf("crawl-%d.json", r.randSource.Int()))

	cmd := exec.CommandContext(ctx, "docker", "run", "--rm",
		"-v", fmt.Sprintf("%s:/out", tempDir),
		r.image,
		"--url", url,
		"--output", "/out/"+filepath.Base(artifactPath),
	)

	// jalankan docker command
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("crawler run error: %v, output=%s", err, string(out))
	}

	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("crawler artifact missing: %w", err)
	}
	// hapus artefak lokal setelah kebaca
	if removeErr := os.Remove(artifactPath); removeErr != nil {
		fmt.Printf("Warning: failed to remove local file %s: %v\n", artifactPath, removeErr)
	}
	return data, nil
}
