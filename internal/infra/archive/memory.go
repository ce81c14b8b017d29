package archive

import (
	"context"
	"sync"

	"github.com/yanqian/runplanner/internal/domain/planner"
)

// MemoryArchive keeps schedule snapshots in memory. Useful for tests and local dev.
type MemoryArchive struct {
	mu    sync.RWMutex
	blobs map[string]Object
}

// Object is an archived snapshot.
type Object struct {
	Data        []byte
	ContentType string
}

// NewMemoryArchive constructs the archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{blobs: make(map[string]Object)}
}

// Put stores a copy of data under key, replacing any previous snapshot.
func (a *MemoryArchive) Put(_ context.Context, key string, data []byte, contentType string) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.blobs[key] = Object{Data: buf, ContentType: contentType}
	return nil
}

// Get returns the snapshot stored under key.
func (a *MemoryArchive) Get(key string) (Object, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	obj, ok := a.blobs[key]
	return obj, ok
}

// Len reports how many snapshots are held.
func (a *MemoryArchive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.blobs)
}

var _ planner.Archive = (*MemoryArchive)(nil)
