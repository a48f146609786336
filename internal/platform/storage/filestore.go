package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// FileStore keeps uploaded evidence files on local disk. Every stored name
// is prefixed with a UUID so repeated uploads of the same filename never
// collide.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage.NewFileStore: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the content under a sanitized, UUID-prefixed name and returns
// the stored filename.
func (s *FileStore) Save(name string, content io.Reader) (string, error) {
	stored := uuid.New().String() + "_" + sanitizeFilename(name)
	f, err := os.Create(filepath.Join(s.dir, stored))
	if err != nil {
		return "", fmt.Errorf("storage.Save: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, content); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("storage.Save: %w", err)
	}
	return stored, nil
}

// Open returns the stored file for reading. The name is reduced to its base
// so a crafted path cannot escape the store directory.
func (s *FileStore) Open(stored string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.Base(stored)))
	if err != nil {
		return nil, fmt.Errorf("storage.Open: %w", err)
	}
	return f, nil
}

// Remove deletes a stored file. A missing file is not an error: the record
// may outlive the file.
func (s *FileStore) Remove(stored string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(stored)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage.Remove: %w", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	cleaned := slug.Make(strings.TrimSuffix(base, ext))
	if cleaned == "" {
		cleaned = "archivo"
	}
	return cleaned + strings.ToLower(ext)
}
