package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"
)

// LocalStore keeps photos on disk under a root directory. It exists for
// development and tests; the server exposes the directory over HTTP so the
// returned URLs resolve.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}

	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalStore) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(objectPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create object %s: %w", objectPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("failed to write object %s: %w", objectPath, err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, objectPath), nil
}

func (s *LocalStore) Remove(_ context.Context, objectPaths []string) error {
	for _, p := range objectPaths {
		full := filepath.Join(s.root, filepath.FromSlash(p))
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			logger.Error.Printf("Failed to delete object %s: %v", p, err)
		}
	}
	return nil
}

func (s *LocalStore) Close() error {
	return nil
}

// Root exposes the upload directory so the server can mount it as a file
// handler.
func (s *LocalStore) Root() string {
	return s.root
}
