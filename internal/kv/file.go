package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"sitetheme/internal/logging"
)

// FileStore keeps entries as a JSON object in a single file. Every call
// reads the file again so that edits made by other processes are seen.
type FileStore struct {
	mu     sync.Mutex
	path   string
	closed bool
}

// NewFileStore returns a store backed by path. The file is created on the
// first write; a missing file is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store requires a path")
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", false, ErrClosed
	}
	data, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *FileStore) Set(key, value string) error {
	return f.update(func(data map[string]string) { data[key] = value })
}

func (f *FileStore) Delete(key string) error {
	return f.update(func(data map[string]string) { delete(data, key) })
}

func (f *FileStore) Clear() error {
	return f.update(func(data map[string]string) {
		for k := range data {
			delete(data, k)
		}
	})
}

func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *FileStore) update(mutate func(map[string]string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	data, err := f.load()
	if err != nil {
		return err
	}
	mutate(data)
	return f.save(data)
}

func (f *FileStore) load() (map[string]string, error) {
	data := make(map[string]string)
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	return data, nil
}

func (f *FileStore) save(data map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	payload = append(payload, '\n')

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, payload, 0644); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace state: %w", err)
	}
	logging.StoreDebug("wrote %d keys to %s", len(data), f.path)
	return nil
}
