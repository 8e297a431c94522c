package blobstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s BlobStore) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "a/index.fvec", []byte("index")))
	require.NoError(t, s.Put(ctx, "a/index.fvec.meta", []byte("meta")))
	require.NoError(t, s.Put(ctx, "b/other", []byte("other")))

	data, err := s.Get(ctx, "a/index.fvec")
	require.NoError(t, err)
	assert.Equal(t, []byte("index"), data)

	// Overwrite.
	require.NoError(t, s.Put(ctx, "a/index.fvec", []byte("index-v2")))
	data, err = s.Get(ctx, "a/index.fvec")
	require.NoError(t, err)
	assert.Equal(t, []byte("index-v2"), data)

	names, err := s.List(ctx, "a/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a/index.fvec", "a/index.fvec.meta"}, names)

	require.NoError(t, s.Delete(ctx, "a/index.fvec"))
	_, err = s.Get(ctx, "a/index.fvec")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is fine.
	require.NoError(t, s.Delete(ctx, "a/index.fvec"))
}

func TestLocalStore(t *testing.T) {
	testStore(t, NewLocalStore(t.TempDir()))
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStore_PutPair(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.PutPair(ctx,
		Object{Name: "index", Data: []byte("i")},
		Object{Name: "meta", Data: []byte("m")},
	))

	data, err := s.Get(ctx, "meta")
	require.NoError(t, err)
	assert.Equal(t, []byte("m"), data)
}

func TestThrottled(t *testing.T) {
	testStore(t, NewThrottled(NewMemoryStore(), 1<<30, 1<<20))
}

func TestThrottled_LimitsWrites(t *testing.T) {
	// 1KB/s with a 256-byte burst: a 512-byte write needs roughly 250ms
	// beyond the initial burst.
	s := NewThrottled(NewMemoryStore(), 1024, 256)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, s.Put(ctx, "blob", make([]byte, 512)))
	assert.Greater(t, time.Since(start), 200*time.Millisecond)
}

func TestThrottled_ContextCancel(t *testing.T) {
	s := NewThrottled(NewMemoryStore(), 1, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.Put(ctx, "blob", make([]byte, 1024))
	assert.Error(t, err)
}
