package objectstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fyf-go/internal/fyf"
)

// MemoryObjectStore is an in-memory implementation of the ObjectStore
// interface, useful for testing. Safe for concurrent use.
type MemoryObjectStore struct {
	bucket  string
	objects map[string][]byte
	mu      sync.RWMutex
}

// NewMemoryObjectStore creates a new in-memory object store with the given
// bucket name.
func NewMemoryObjectStore(bucket string) *MemoryObjectStore {
	return &MemoryObjectStore{
		bucket:  bucket,
		objects: make(map[string][]byte),
	}
}

// Put stores an object directly. In production clients upload via
// presigned URLs; this is the test stand-in for a completed upload.
func (m *MemoryObjectStore) Put(id string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[id] = data
}

func (m *MemoryObjectStore) StatObject(_ context.Context, id string) (fyf.ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[id]
	if !ok {
		return fyf.ObjectInfo{}, fmt.Errorf("object not found: %s", id)
	}
	return fyf.ObjectInfo{Size: int64(len(data))}, nil
}

func (m *MemoryObjectStore) DeleteObject(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, id)
	return nil
}

func (m *MemoryObjectStore) PresignPut(_ context.Context, id string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("memory://%s/%s?method=PUT&expires=%d", m.bucket, id, int(expiry.Seconds())), nil
}

func (m *MemoryObjectStore) PresignGet(_ context.Context, id string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("memory://%s/%s?method=GET&expires=%d", m.bucket, id, int(expiry.Seconds())), nil
}

// Has reports whether an object with the given id exists.
func (m *MemoryObjectStore) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[id]
	return ok
}

// Compile-time check that MemoryObjectStore implements fyf.ObjectStore
var _ fyf.ObjectStore = (*MemoryObjectStore)(nil)
