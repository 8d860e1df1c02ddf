package tracker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrNotFound is returned by a Provider when a key has never been set.
	ErrNotFound = errors.New("key not found")
	// ErrStorageUnavailable is returned when no persistent store exists in
	// the current execution context.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Provider is a per-device key-value store holding JSON documents.
type Provider interface {
	// Available reports whether the provider can persist anything at all.
	Available() bool
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}

// Absent is the provider of an execution context without local storage.
type Absent struct{}

func (Absent) Available() bool { return false }

func (Absent) Get(context.Context, string) ([]byte, error) { return nil, ErrStorageUnavailable }

func (Absent) Set(context.Context, string, []byte) error { return ErrStorageUnavailable }

// MemoryProvider keeps values in process memory.
type MemoryProvider struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryProvider returns an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{data: make(map[string][]byte)}
}

func (m *MemoryProvider) Available() bool { return true }

func (m *MemoryProvider) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryProvider) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// FileProvider stores each key as <dir>/<key>.json.
type FileProvider struct {
	dir string
	mu  sync.RWMutex
}

// NewFileProvider creates dir if needed and returns a provider rooted there.
func NewFileProvider(dir string) (*FileProvider, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileProvider{dir: dir}, nil
}

func (f *FileProvider) Available() bool { return true }

func (f *FileProvider) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileProvider) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set writes through a temp file and rename; readers see either the old or
// the new document.
func (f *FileProvider) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}
