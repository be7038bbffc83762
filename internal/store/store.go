// Package store keeps generated PDFs on disk under opaque uuid identifiers.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/alnah/go-cv2pdf/internal/fileutil"
)

// Sentinel errors for store operations.
var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid document id")
)

// ext is appended to every stored document.
const ext = ".pdf"

// FileStore saves one file per document in a single directory.
// It is safe for concurrent use: writes go through a temp file and an
// atomic rename, so readers never observe a partial document.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("empty storage directory")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *FileStore) Dir() string { return s.dir }

// NewID returns a fresh random (version 4) identifier.
func (s *FileStore) NewID() string {
	return uuid.NewString()
}

// ValidateID accepts only canonical lowercase-or-uppercase uuid strings.
// Anything carrying path separators, dots or other decoration is rejected
// before it reaches the filesystem.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if strings.ContainsAny(id, "/\\.\x00") || len(id) != 36 {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Path returns where the document id lives, after validating id.
func (s *FileStore) Path(id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, strings.ToLower(id)+ext), nil
}

// Save stores data under id, replacing any previous document.
func (s *FileStore) Save(id string, data []byte) error {
	p, err := s.Path(id)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(p, data, 0o640); err != nil {
		return fmt.Errorf("saving %s: %w", id, err)
	}
	return nil
}

// Open returns the stored document. The caller closes it.
func (s *FileStore) Open(id string) (*os.File, error) {
	p, err := s.Path(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p) // #nosec G304 -- id validated above
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("opening %s: %w", id, err)
	}
	return f, nil
}
