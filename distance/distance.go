// Package distance provides vector distance metrics and the distance-to-score
// conversion used by similarity queries.
package distance

import (
	"fmt"
	"slices"

	"github.com/quantmesh/finvec/internal/math32"
)

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	return math32.Dot(a, b)
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	return math32.SquaredL2(a, b)
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	norm2 := math32.Dot(v, v)
	if norm2 == 0 {
		return false
	}
	inv := 1 / math32.Sqrt(norm2)
	math32.ScaleInPlace(v, inv)
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}

// Metric represents the distance metric used for vector comparison.
// It is fixed at index construction and determines both insertion-time
// normalization and query-time score conversion.
type Metric uint8

const (
	// MetricSquaredL2 ranks by squared Euclidean distance (smaller is closer).
	MetricSquaredL2 Metric = iota

	// MetricInnerProduct ranks by dot product over unit vectors (larger is
	// closer). Vectors are L2-normalized at insertion and query time, so the
	// dot product equals cosine similarity.
	MetricInnerProduct
)

func (m Metric) String() string {
	switch m {
	case MetricSquaredL2:
		return "SquaredL2"
	case MetricInnerProduct:
		return "InnerProduct"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(m))
	}
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	return m == MetricSquaredL2 || m == MetricInnerProduct
}

// NeedsNormalization reports whether vectors must be unit-normalized before
// insertion and query under this metric.
func (m Metric) NeedsNormalization() bool {
	return m == MetricInnerProduct
}

// Func is a function type for distance calculation.
// Smaller results always mean "closer", regardless of metric.
type Func func(a, b []float32) float32

// Provider returns the internal distance function for the given metric.
//
// For MetricInnerProduct the returned function negates the dot product so that
// the uniform "smaller is closer" ordering holds; use Score to recover the
// caller-facing similarity.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricSquaredL2:
		return SquaredL2, nil
	case MetricInnerProduct:
		return func(a, b []float32) float32 { return -Dot(a, b) }, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// Score converts an internal distance to a bounded similarity score.
//
// For SquaredL2 the mapping is 1/(1+d), taking distances in [0, inf) to
// scores in (0, 1]. For InnerProduct the internal distance is the negated dot
// product of unit vectors, so the score is the cosine similarity itself.
// Both mappings are monotone, so distance order and score order agree.
func Score(m Metric, d float32) float32 {
	switch m {
	case MetricSquaredL2:
		return 1 / (1 + d)
	case MetricInnerProduct:
		return -d
	default:
		return 0
	}
}

// ParseMetric parses a metric name. Accepted spellings: "l2", "squared_l2",
// "ip", "inner_product", "cosine".
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "l2", "squared_l2", "L2", "SquaredL2":
		return MetricSquaredL2, nil
	case "ip", "inner_product", "cosine", "InnerProduct":
		return MetricInnerProduct, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", s)
	}
}
