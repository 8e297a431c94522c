// Package flat implements an exhaustive, append-only similarity index.
// Every query scans all stored vectors, which keeps recall exact and the
// structure trivially persistable. Ordinals are assigned by insertion
// order and are never reused.
package flat

import (
	"context"
	"sync"

	"github.com/quantmesh/finvec/distance"
	"github.com/quantmesh/finvec/index"
	"github.com/quantmesh/finvec/internal/queue"
)

// Options configures a Flat index.
type Options struct {
	// Dimension is the length every stored vector must have.
	Dimension int

	// Metric selects the distance function.
	Metric distance.Metric
}

// DefaultOptions are the recommended defaults.
var DefaultOptions = Options{
	Metric: distance.MetricSquaredL2,
}

// Flat is an exhaustive nearest-neighbor index. It is safe for
// concurrent use.
type Flat struct {
	mu sync.RWMutex

	dim       int
	metric    distance.Metric
	distFn    distance.Func
	normalize bool

	// data holds all vectors back to back, dimension-strided.
	data  []float32
	count int
}

// New creates an empty flat index.
func New(optFns ...func(o *Options)) (*Flat, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dimension <= 0 {
		return nil, &index.ErrInvalidDimension{Dimension: opts.Dimension}
	}

	distFn, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, &index.ErrInvalidMetric{Metric: opts.Metric}
	}

	return &Flat{
		dim:       opts.Dimension,
		metric:    opts.Metric,
		distFn:    distFn,
		normalize: opts.Metric.NeedsNormalization(),
	}, nil
}

// Dimension returns the vector length enforced by the index.
func (f *Flat) Dimension() int { return f.dim }

// Metric returns the configured distance metric.
func (f *Flat) Metric() distance.Metric { return f.metric }

// Count returns the number of stored vectors, including any that a
// caller considers logically deleted.
func (f *Flat) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.count
}

// Append adds vectors to the index and returns the ordinal assigned to
// the first one; subsequent vectors receive consecutive ordinals. The
// batch is all-or-nothing: if any vector fails validation, none are
// stored.
func (f *Flat) Append(ctx context.Context, vectors [][]float32) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		if err := index.ValidateVector(v, f.dim); err != nil {
			return 0, err
		}

		if f.normalize {
			nv, ok := distance.NormalizeL2Copy(v)
			if !ok {
				return 0, index.ErrEmptyVector
			}
			normalized[i] = nv
		} else {
			normalized[i] = v
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	start := uint32(f.count)
	for _, v := range normalized {
		f.data = append(f.data, v...)
	}
	f.count += len(vectors)

	return start, nil
}

// Search returns the k nearest vectors to q, ordered from closest to
// farthest. Fewer than k results are returned when the index holds fewer
// vectors. An empty index yields no results and no error.
func (f *Flat) Search(ctx context.Context, q []float32, k int) ([]index.SearchResult, error) {
	if k < 1 {
		return nil, index.ErrInvalidK
	}
	if err := index.ValidateVector(q, f.dim); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := q
	if f.normalize {
		nq, ok := distance.NormalizeL2Copy(q)
		if !ok {
			return nil, index.ErrEmptyVector
		}
		query = nq
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.count == 0 {
		return nil, nil
	}

	// Bounded max-heap: the root is the worst of the current best k, so
	// each candidate needs a single comparison against it.
	heap := queue.NewMax(k)
	for i := 0; i < f.count; i++ {
		d := f.distFn(query, f.data[i*f.dim:(i+1)*f.dim])

		if heap.Len() < k {
			heap.Push(queue.Item{Ordinal: uint32(i), Distance: d})
			continue
		}

		if worst, _ := heap.Top(); d < worst.Distance {
			heap.Pop()
			heap.Push(queue.Item{Ordinal: uint32(i), Distance: d})
		}
	}

	results := make([]index.SearchResult, heap.Len())
	for i := len(results) - 1; i >= 0; i-- {
		item, _ := heap.Pop()
		results[i] = index.SearchResult{Ordinal: item.Ordinal, Distance: item.Distance}
	}

	return results, nil
}

// VectorByOrdinal returns the stored vector at the given ordinal. The
// returned slice is a copy. Under a normalizing metric it is the
// normalized form, which re-appends identically during a rebuild.
func (f *Flat) VectorByOrdinal(ordinal uint32) ([]float32, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	i := int(ordinal)
	if i >= f.count {
		return nil, false
	}

	v := make([]float32, f.dim)
	copy(v, f.data[i*f.dim:(i+1)*f.dim])

	return v, true
}
