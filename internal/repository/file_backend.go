package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type fileEnvelope struct {
	Version  int64           `json:"version"`
	Document json.RawMessage `json:"document"`
}

// FileBackend stores each key as a JSON file in dir. Writes go to a temp file
// that is renamed over the target. The version check only covers writers in
// this process.
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(key string) string {
	name := strings.NewReplacer(":", "_", "/", "_", `\`, "_").Replace(key)
	return filepath.Join(b.dir, name+".json")
}

func (b *FileBackend) Load(_ context.Context, key string) ([]byte, int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read(key)
}

// read returns the raw file content with version 0 when the envelope is
// unreadable, so the store can fail closed and the next write replaces it.
func (b *FileBackend) read(key string) ([]byte, int64, error) {
	raw, err := os.ReadFile(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read store file: %w", err)
	}

	var env fileEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Document == nil {
		return raw, 0, nil
	}
	return env.Document, env.Version, nil
}

func (b *FileBackend) Save(_ context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, current, err := b.read(key)
	if err != nil {
		return 0, err
	}
	if current != expectedVersion {
		return 0, ErrVersionConflict
	}

	next := expectedVersion + 1
	out, err := json.Marshal(fileEnvelope{Version: next, Document: data})
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(b.dir, ".content-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), b.path(key)); err != nil {
		return 0, fmt.Errorf("failed to replace store file: %w", err)
	}
	return next, nil
}
