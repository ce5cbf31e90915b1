// Package storage persists evidence photos on local disk under the
// configured upload directory; the router serves them back under
// /uploads/. Filenames are generated, never taken from the client as-is.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	ErrPhotoTooLarge   = errors.New("photo exceeds the size limit")
	ErrUnsupportedType = errors.New("photo must be JPEG, PNG or WebP")

	allowedTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	}
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// PhotoStore saves evidence photos under Dir.
type PhotoStore struct {
	Dir      string
	MaxBytes int64
}

// Save validates the content type and size, then writes the photo under a
// generated {timestamp}-{random}-{originalName} filename. It returns the
// stored filename (relative to Dir).
func (s PhotoStore) Save(originalName, contentType string, size int64, r io.Reader) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(contentType)]
	if !ok {
		return "", ErrUnsupportedType
	}
	if s.MaxBytes > 0 && size > s.MaxBytes {
		return "", ErrPhotoTooLarge
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), randomHex(4), safeBaseName(originalName, ext))
	path := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}
	defer f.Close()

	// Enforce the cap while copying too: Content-Length can lie.
	limit := io.Reader(r)
	if s.MaxBytes > 0 {
		limit = io.LimitReader(r, s.MaxBytes+1)
	}
	written, err := io.Copy(f, limit)
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write photo: %w", err)
	}
	if s.MaxBytes > 0 && written > s.MaxBytes {
		_ = os.Remove(path)
		return "", ErrPhotoTooLarge
	}
	return name, nil
}

// Remove deletes a stored photo. A missing file is not an error.
func (s PhotoStore) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func safeBaseName(original, fallbackExt string) string {
	base := filepath.Base(original)
	base = unsafeChars.ReplaceAllString(base, "_")
	if base == "" || base == "." || base == ".." {
		base = "photo" + fallbackExt
	}
	if len(base) > 80 {
		base = base[len(base)-80:]
	}
	return base
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
