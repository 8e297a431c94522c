package finvec

import (
	"errors"
	"fmt"

	"github.com/quantmesh/finvec/index"
	"github.com/quantmesh/finvec/persistence"
)

var (
	// ErrClosed is returned when operating on a closed store.
	ErrClosed = errors.New("store is closed")

	// ErrInvalidTopK is returned when topK is not positive.
	ErrInvalidTopK = errors.New("topK must be positive")

	// ErrCorruptArtifact is returned when persisted artifacts fail
	// validation or disagree with each other.
	ErrCorruptArtifact = errors.New("corrupt artifact")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// PersistError wraps a failure while saving or loading artifacts with
// the operation and path involved.
type PersistError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Dimension and argument normalization.
	var dm *index.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	if errors.Is(err, index.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidTopK, err)
	}

	// Artifact validation unification.
	if errors.Is(err, persistence.ErrInvalidMagic) ||
		errors.Is(err, persistence.ErrInvalidVersion) ||
		errors.Is(err, persistence.ErrInvalidKind) ||
		errors.Is(err, persistence.ErrInvalidHeader) ||
		errors.Is(err, persistence.ErrChecksumMismatch) {
		return fmt.Errorf("%w: %w", ErrCorruptArtifact, err)
	}

	return err
}
