package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ProofStorage persists tenant-uploaded transfer proof images and returns a URL
// reference. Mime-type and size limits are enforced by the HTTP layer before the
// file reaches here.
type ProofStorage interface {
	Store(ctx context.Context, filename string, r io.Reader) (string, error)
}

type diskStorage struct {
	baseDir string
	baseURL string
}

// NewDiskStorage stores proofs under baseDir and serves them from baseURL.
func NewDiskStorage(baseDir, baseURL string) (ProofStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", baseDir, err)
	}
	return &diskStorage{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *diskStorage) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Random name keeps uploads from colliding or being guessable.
	name := uuid.New().String() + filepath.Ext(filename)
	path := filepath.Join(s.baseDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create proof file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write proof file: %w", err)
	}

	return s.baseURL + "/" + name, nil
}
