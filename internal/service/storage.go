package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidFileName = errors.New("invalid file name")

// DiskStore keeps uploaded documents under a single directory with random names.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll -> %w", err)
	}

	return &DiskStore{dir: dir}, nil
}

// Save writes r under a fresh UUID name that keeps the extension of originalName.
// Nothing is left behind when the write fails.
func (s *DiskStore) Save(originalName string, r io.Reader) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))

	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("os.Create -> %w", err)
	}

	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("io.Copy -> %w", err)
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("f.Close -> %w", err)
	}

	return name, nil
}

// Path resolves a stored name, refusing anything that escapes the directory.
func (s *DiskStore) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}

	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf("os.Stat -> %w", err)
	}

	return path, nil
}

var ErrFileNotFound = errors.New("file not found")
