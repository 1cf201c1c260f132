package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"recipeimport/internal/ports"
)

// FileStore keeps uploaded recipe images on the local filesystem and hands
// out public URLs under a configured base path. Uploads are idempotent by
// filename.
type FileStore struct {
	dir     string
	baseURL string
}

var _ ports.BlobStore = (*FileStore)(nil)

// NewFileStore wires the target directory and the public base URL.
func NewFileStore(dir, baseURL string) *FileStore {
	return &FileStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// UploadIfAbsent writes the payload under the given filename unless a blob
// with that name already exists, and returns its public URL either way.
func (s *FileStore) UploadIfAbsent(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid blob filename %q", filename)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure blob dir: %w", err)
	}

	target := filepath.Join(s.dir, name)
	if _, err := os.Stat(target); err == nil {
		return s.publicURL(name), nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat blob %s: %w", name, err)
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %s: %w", name, err)
	}
	return s.publicURL(name), nil
}

func (s *FileStore) publicURL(name string) string {
	return s.baseURL + "/" + name
}
