package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage persists blobs on disk and serves them under a public base URL.
type LocalStorage struct {
	baseDir       string
	publicBaseURL string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicBaseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Upload writes data to the relative key and returns its public URL.
func (s *LocalStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	target := filepath.Join(s.baseDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare storage directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %s (%s): %w", clean, contentType, err)
	}
	return s.PublicURL(clean), nil
}

// Delete removes a stored blob if present.
func (s *LocalStorage) Delete(key string) error {
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(clean))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// PublicURL maps a key to the URL clients use to fetch it.
func (s *LocalStorage) PublicURL(key string) string {
	return s.publicBaseURL + "/" + strings.TrimLeft(key, "/")
}

// Dir exposes the base directory so the router can serve it statically.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

func cleanKey(key string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("storage key required")
	}
	return clean, nil
}
