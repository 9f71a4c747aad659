package repository

import (
	"context"
	"errors"
	"sync"
)

// ErrVersionConflict means the document changed between load and save.
var ErrVersionConflict = errors.New("content document was modified concurrently")

// Backend persists one opaque JSON document per key. Version 0 means the key
// does not exist yet; every successful Save bumps it by one.
type Backend interface {
	Load(ctx context.Context, key string) (data []byte, version int64, err error)
	Save(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error)
}

type memoryEntry struct {
	data    []byte
	version int64
}

// MemoryBackend keeps documents in process. Used by tests and the CLI's
// ephemeral mode.
type MemoryBackend struct {
	mu   sync.Mutex
	docs map[string]memoryEntry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string]memoryEntry)}
}

func (b *MemoryBackend) Load(_ context.Context, key string) ([]byte, int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.docs[key]
	if !ok {
		return nil, 0, nil
	}
	return append([]byte(nil), e.data...), e.version, nil
}

func (b *MemoryBackend) Save(_ context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.docs[key].version != expectedVersion {
		return 0, ErrVersionConflict
	}
	next := expectedVersion + 1
	b.docs[key] = memoryEntry{data: append([]byte(nil), data...), version: next}
	return next, nil
}
