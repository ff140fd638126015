package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage implements Storage on the local filesystem.
// Used in development when R2 is not configured.
type LocalStorage struct {
	baseDir string
	baseURL string
}

// NewLocalStorage creates a filesystem-backed storage rooted at baseDir
func NewLocalStorage(baseDir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, baseURL: baseURL}, nil
}

func (s *LocalStorage) Save(_ context.Context, filePath string, reader io.Reader, _ string) error {
	fullPath := filepath.Join(s.baseDir, filepath.Clean(filePath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create dir: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Delete(_ context.Context, filePath string) error {
	err := os.Remove(filepath.Join(s.baseDir, filepath.Clean(filePath)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalStorage) GetURL(filePath string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, filePath)
}
