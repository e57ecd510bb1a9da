package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PhotoStore persists uploaded photo files and returns the stored filename
// that product records reference.
type PhotoStore interface {
	Save(file *multipart.FileHeader) (string, error)
}

// DiskPhotoStore writes uploads to a directory on local disk.
type DiskPhotoStore struct {
	dir string
}

// NewDiskPhotoStore creates a DiskPhotoStore rooted at dir, creating the
// directory if it does not exist yet.
func NewDiskPhotoStore(dir string) (*DiskPhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &DiskPhotoStore{dir: dir}, nil
}

// Save copies the uploaded file to disk under a collision-free name and
// returns that name. The stored name is a fresh uuid token prefixed to the
// sanitized original name, so two uploads of the same file never clash.
func (s *DiskPhotoStore) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file %s: %w", file.Filename, err)
	}
	defer src.Close()

	name := uuid.New().String() + "-" + sanitizeFilename(file.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", name, err)
	}
	return name, nil
}

// sanitizeFilename strips any path components a client may have smuggled into
// the original filename and replaces characters unsafe for the filesystem.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
