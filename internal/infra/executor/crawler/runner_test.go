package crawler

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Source bind mount relatif bikin docker buat named volume, bukan mount
// host dir; artefak lokal tidak akan pernah muncul kalau itu terjadi.
func TestArtifactDirIsAbsolute(t *testing.T) {
	dir, err := artifactDir()

	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.Equal(t, "temp", filepath.Base(dir))
}

func TestNewRunnerDefaultsImage(t *testing.T) {
	r := NewRunner("")
	assert.Equal(t, defaultImage, r.image)

	r = NewRunner("custom/crawler:v2")
	assert.Equal(t, "custom/crawler:v2", r.image)
}
