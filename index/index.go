// Package index defines the contract shared by similarity index
// implementations and the validation errors they report.
package index

import (
	"errors"
	"fmt"

	"github.com/quantmesh/finvec/distance"
)

// SearchResult is a single nearest-neighbor hit. Distance follows the
// index metric's internal convention: smaller is closer.
type SearchResult struct {
	Ordinal  uint32
	Distance float32
}

var (
	// ErrInvalidK is returned when a search is requested with k < 1.
	ErrInvalidK = errors.New("k must be at least 1")

	// ErrEmptyVector is returned when a vector has length zero or, under a
	// normalizing metric, zero magnitude.
	ErrEmptyVector = errors.New("vector must not be empty")
)

// ErrDimensionMismatch is returned when a vector's length does not match
// the index dimension.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidDimension is returned when an index is created with a
// non-positive dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension %d: must be positive", e.Dimension)
}

// ErrInvalidMetric is returned when an index is created with an unknown
// metric.
type ErrInvalidMetric struct {
	Metric distance.Metric
}

func (e *ErrInvalidMetric) Error() string {
	return fmt.Sprintf("invalid metric %d", uint8(e.Metric))
}

// ValidateVector checks a single vector against the index dimension.
func ValidateVector(v []float32, dim int) error {
	if len(v) == 0 {
		return ErrEmptyVector
	}
	if len(v) != dim {
		return &ErrDimensionMismatch{Expected: dim, Actual: len(v)}
	}
	return nil
}
