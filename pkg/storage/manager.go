package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	errs "gimgdl/pkg/errors"
)

const opSave = "save"

// Manager writes downloaded images under collision-free names
type Manager struct {
	mu       sync.Mutex
	saved    int
	newName  func() string
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// NewManager creates a new storage manager
func NewManager() *Manager {
	return &Manager{
		newName:  uuid.NewString,
		dirPerm:  0755,
		filePerm: 0644,
	}
}

// Save writes data to dir as <uuid>.<ext> and returns the final path.
// The directory is created if missing. The file only appears under its
// final name once fully written.
func (m *Manager) Save(dir, ext string, data []byte) (string, error) {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return "", errs.Newf(errs.ErrorTypeValidation, opSave, "file extension must not be empty")
	}

	if err := os.MkdirAll(dir, m.dirPerm); err != nil {
		return "", errs.New(errs.ErrorTypeFilesystem, opSave, fmt.Errorf("failed to create output directory: %w", err))
	}

	filename := filepath.Join(dir, m.newName()+"."+ext)

	// Create temporary file first
	tempFile := filename + ".tmp"
	out, err := os.OpenFile(tempFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, m.filePerm)
	if err != nil {
		return "", errs.New(errs.ErrorTypeFilesystem, opSave, fmt.Errorf("failed to create temporary file: %w", err))
	}

	_, err = out.Write(data)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", errs.New(errs.ErrorTypeFilesystem, opSave, fmt.Errorf("failed to write image data: %w", err))
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return "", errs.New(errs.ErrorTypeFilesystem, opSave, fmt.Errorf("failed to close file: %w", closeErr))
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", errs.New(errs.ErrorTypeFilesystem, opSave, fmt.Errorf("failed to rename temporary file: %w", err))
	}

	m.mu.Lock()
	m.saved++
	m.mu.Unlock()

	return filename, nil
}

// SavedCount returns the number of files written by this manager
func (m *Manager) SavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved
}
