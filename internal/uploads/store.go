package uploads

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// TempFile is an uploaded image written to disk for the length of one
// verification.
type TempFile struct {
	Path string
}

// Remove deletes the file. Removing an already deleted file is not an error.
func (f *TempFile) Remove() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Store writes uploads into a single directory under collision-free names.
type Store struct {
	dir string
}

// NewStore creates dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory uploads are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data under a fresh uuid name. The extension of filename is
// kept when it is a known image type so decoders that look at it still
// work. The caller owns the returned file and must Remove it.
func (s *Store) Save(filename string, data []byte) (*TempFile, error) {
	path := filepath.Join(s.dir, uuid.NewString()+imageExtension(filename))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		// WriteFile may leave a partial file behind.
		_ = os.Remove(path)
		return nil, fmt.Errorf("write upload: %w", err)
	}
	return &TempFile{Path: path}, nil
}

func imageExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if allowedExtensions[ext] {
		return ext
	}
	return ""
}
