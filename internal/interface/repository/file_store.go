package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ssim-converter-service/internal/domain/repository"
	"ssim-converter-service/pkg/logger"
)

// FileScheduleStore writes generated SSIM files into a directory
type FileScheduleStore struct {
	dir    string
	logger logger.Logger
}

// NewFileScheduleStore creates a store rooted at dir, creating it if needed
func NewFileScheduleStore(dir string, logger logger.Logger) (repository.ScheduleStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &FileScheduleStore{dir: dir, logger: logger}, nil
}

// Save writes to a temporary file in the same directory and renames it into
// place, so readers never see a partial file.
func (s *FileScheduleStore) Save(ctx context.Context, name string, w io.WriterTo) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", errors.New("empty file name")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once renamed.
		os.Remove(tmpName)
	}()

	if _, err := w.WriteTo(tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("rename %s: %w", name, err)
	}

	s.logger.Info("Saved schedule file", "path", path)
	return path, nil
}
