// Package photo keeps copies of selfie images next to the database so the
// gallery survives the originals being moved.
package photo

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowed = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".heic": true, ".webp": true}

// DefaultDir returns <user config dir>/hard75/photos.
func DefaultDir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "hard75", "photos"), nil
}

// Import copies src into dir under a fresh name and returns the new path.
func Import(dir, src string) (string, error) {
	ext := strings.ToLower(filepath.Ext(src))
	if !allowed[ext] {
		return "", fmt.Errorf("import photo: unsupported file type %q", ext)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open photo: %w", err)
	}
	defer in.Close()

	if info, err := in.Stat(); err != nil {
		return "", fmt.Errorf("stat photo: %w", err)
	} else if info.IsDir() {
		return "", fmt.Errorf("import photo: %s is a directory", src)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create photo directory: %w", err)
	}
	dst := filepath.Join(dir, uuid.NewString()+ext)
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create photo: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("copy photo: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close photo: %w", err)
	}
	return dst, nil
}
