package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStorage keeps objects in process, for development and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

type memObject struct {
	data        []byte
	contentType string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memObject)}
}

func (m *MemoryStorage) Upload(_ context.Context, bucket, path string, data io.Reader, contentType string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("read upload data: %w", err)
	}
	m.mu.Lock()
	m.objects[bucket+"/"+path] = memObject{data: b, contentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Download(_ context.Context, bucket, path string) (io.ReadCloser, error) {
	m.mu.RLock()
	obj, ok := m.objects[bucket+"/"+path]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, path)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *MemoryStorage) Delete(_ context.Context, bucket, path string) error {
	m.mu.Lock()
	delete(m.objects, bucket+"/"+path)
	m.mu.Unlock()
	return nil
}

// Len reports how many objects are stored.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
