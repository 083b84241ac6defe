package analysis

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	FindByToken(ctx context.Context, token Token) (*Analysis, error)
	Recent(ctx context.Context, limit int) ([]*Analysis, error)
}

// Runner port untuk analysis "REAL": jalankan crawler terhadap URL
// dan balikin hasil sebagai JSON mentah.
type Runner interface {
	Run(ctx context.Context, url string) ([]byte, error)
}

// ArtifactStore port untuk simpan blob hasil analysis
type ArtifactStore interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
