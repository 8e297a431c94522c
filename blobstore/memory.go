package blobstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore implements BlobStore in memory. It is intended for tests
// and ephemeral deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = cp

	return nil
}

// PutPair writes both objects under a single lock acquisition, so
// concurrent readers observe either neither or both.
func (s *MemoryStore) PutPair(ctx context.Context, a, b Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ca := make([]byte, len(a.Data))
	copy(ca, a.Data)
	cb := make([]byte, len(b.Data))
	copy(cb, b.Data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[a.Name] = ca
	s.blobs[b.Name] = cb

	return nil
}

func (s *MemoryStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	return cp, nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, name)

	return nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for name := range s.blobs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return names, nil
}
