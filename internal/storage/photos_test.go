package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) PhotoStore {
	t.Helper()
	return PhotoStore{Dir: t.TempDir(), MaxBytes: 1024}
}

func TestSaveWritesGeneratedName(t *testing.T) {
	s := newStore(t)
	content := "fake-jpeg-bytes"

	name, err := s.Save("recibo 001.jpg", "image/jpeg", int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^\d+-[0-9a-f]{8}-recibo_001\.jpg$`), name)

	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestSaveRejectsUnsupportedType(t *testing.T) {
	s := newStore(t)
	_, err := s.Save("doc.pdf", "application/pdf", 10, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = s.Save("evil.svg", "image/svg+xml", 10, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveRejectsOversizedDeclaredSize(t *testing.T) {
	s := newStore(t)
	_, err := s.Save("big.png", "image/png", 2048, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrPhotoTooLarge)
}

func TestSaveRejectsOversizedStream(t *testing.T) {
	s := newStore(t)
	// Declared size lies; the stream itself is over the cap.
	body := strings.Repeat("a", 2048)
	_, err := s.Save("big.png", "image/png", 100, strings.NewReader(body))
	assert.ErrorIs(t, err, ErrPhotoTooLarge)

	entries, readErr := os.ReadDir(s.Dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "partial file must be cleaned up")
}

func TestSaveSanitizesOriginalName(t *testing.T) {
	s := newStore(t)
	name, err := s.Save("../../etc/passwd", "image/webp", 4, strings.NewReader("webp"))
	require.NoError(t, err)
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, "..")
}

func TestRemove(t *testing.T) {
	s := newStore(t)
	name, err := s.Save("p.jpg", "image/jpeg", 1, strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(name))
	_, statErr := os.Stat(filepath.Join(s.Dir, name))
	assert.True(t, os.IsNotExist(statErr))

	assert.NoError(t, s.Remove("never-existed.jpg"))
	assert.NoError(t, s.Remove(""))
}
