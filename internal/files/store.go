// Package files stores uploaded proof-of-payment documents and hands back
// opaque references; nothing else in the app ever touches the raw bytes.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidFile = errors.New("files: missing or disallowed file type")

// allowedExtensions is the proof-of-payment allow-list. Checked by suffix,
// case-insensitively, before any byte is written.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".pdf":  true,
}

// Allowed reports whether the original filename carries an accepted
// extension.
func Allowed(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Store saves an upload and returns an opaque reference for later retrieval.
type Store interface {
	Save(ownerID, courseID uint, filename string, r io.Reader) (string, error)
	Path(ref string) string
}

// DiskStore keeps proofs as flat files under Dir. References are the stored
// filenames: "{ownerID}_{courseID}_{uuid}{ext}", so a reference never leaks
// the uploader's original name.
type DiskStore struct {
	Dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{Dir: dir}, nil
}

func (s *DiskStore) Save(ownerID, courseID uint, filename string, r io.Reader) (string, error) {
	if filename == "" || !Allowed(filename) {
		return "", ErrInvalidFile
	}

	ref := fmt.Sprintf("%d_%d_%s%s", ownerID, courseID, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	f, err := os.Create(filepath.Join(s.Dir, ref))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return ref, nil
}

// Path maps a stored reference back to a file path for serving. References
// are sanitized to their base name so a crafted ref cannot escape Dir.
func (s *DiskStore) Path(ref string) string {
	return filepath.Join(s.Dir, filepath.Base(ref))
}
