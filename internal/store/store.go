// Package store persists the serialized match state.
//
// Two implementations satisfy match.Store: File keeps the payload on disk
// and survives restarts, Memory keeps it in process for tests and for the
// --ephemeral mode of the CLI.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFilename is the state file name used under the user's config dir.
const DefaultFilename = "match.json"

// DefaultPath returns the default location of the state file, falling back
// to the working directory when no user config dir is available.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultFilename
	}
	return filepath.Join(dir, "domino", DefaultFilename)
}

// File stores the payload in a single file. Writes replace the file
// atomically so a crash mid-save leaves the previous checkpoint intact.
type File struct {
	path string
	perm os.FileMode
	mu   sync.Mutex
}

// NewFile returns a File store at path. The parent directory is created on
// first save.
func NewFile(path string) *File {
	return &File{path: path, perm: 0o644}
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// Load returns the stored payload, or nil if nothing has been saved.
func (f *File) Load() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	return data, nil
}

// Save replaces the stored payload.
func (f *File) Save(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	return writeAtomic(f.path, data, f.perm)
}

// Clear removes the stored payload. Clearing an empty store is not an error.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}

// Memory keeps the payload in process.
type Memory struct {
	data []byte
	mu   sync.RWMutex
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns a copy of the stored payload, or nil.
func (m *Memory) Load() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

// Save stores a copy of data.
func (m *Memory) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

// Clear drops the stored payload.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}
