// Package blobstore abstracts durable byte storage for store artifacts.
// Implementations cover the local file system, memory (for tests) and
// object stores; see the s3 and minio subpackages.
package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// BlobStore stores whole artifacts under flat names. Writes replace any
// existing blob with the same name.
type BlobStore interface {
	// Put writes data under name, replacing any existing blob.
	Put(ctx context.Context, name string, data []byte) error

	// Get reads the blob stored under name.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes the blob stored under name. Deleting a missing blob
	// is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of blobs starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Object pairs a blob name with its content.
type Object struct {
	Name string
	Data []byte
}

// PairWriter is an optional interface for stores that can publish two
// blobs as a unit, so readers never observe one without the other.
// Stores without native transactions simply omit it and callers fall
// back to sequential Puts.
type PairWriter interface {
	// PutPair writes both objects, making them visible together.
	PutPair(ctx context.Context, a, b Object) error
}
