package flat

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmesh/finvec/distance"
	"github.com/quantmesh/finvec/index"
)

func newTestIndex(t *testing.T, dim int, metric distance.Metric) *Flat {
	t.Helper()

	f, err := New(func(o *Options) {
		o.Dimension = dim
		o.Metric = metric
	})
	require.NoError(t, err)

	return f
}

func TestNew_Validation(t *testing.T) {
	_, err := New()
	var dimErr *index.ErrInvalidDimension
	assert.ErrorAs(t, err, &dimErr)

	_, err = New(func(o *Options) {
		o.Dimension = 3
		o.Metric = distance.Metric(99)
	})
	var metricErr *index.ErrInvalidMetric
	assert.ErrorAs(t, err, &metricErr)
}

func TestAppend_OrdinalsMonotonic(t *testing.T) {
	f := newTestIndex(t, 2, distance.MetricSquaredL2)
	ctx := context.Background()

	start, err := f.Append(ctx, [][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, uint32(0), start)

	start, err = f.Append(ctx, [][]float32{{1, 1}})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), start)
	assert.Equal(t, 3, f.Count())
}

func TestAppend_AllOrNothing(t *testing.T) {
	f := newTestIndex(t, 2, distance.MetricSquaredL2)

	_, err := f.Append(context.Background(), [][]float32{{1, 0}, {1, 2, 3}})
	var dimErr *index.ErrDimensionMismatch
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 3, dimErr.Actual)

	assert.Equal(t, 0, f.Count())
}

func TestSearch_L2(t *testing.T) {
	f := newTestIndex(t, 2, distance.MetricSquaredL2)
	ctx := context.Background()

	_, err := f.Append(ctx, [][]float32{{0, 0}, {1, 0}, {3, 0}, {10, 0}})
	require.NoError(t, err)

	results, err := f.Search(ctx, []float32{0.9, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, uint32(1), results[0].Ordinal)
	assert.Equal(t, uint32(0), results[1].Ordinal)
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
}

func TestSearch_ExactMatchDistanceZero(t *testing.T) {
	f := newTestIndex(t, 3, distance.MetricSquaredL2)
	ctx := context.Background()

	_, err := f.Append(ctx, [][]float32{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	results, err := f.Search(ctx, []float32{1, 2, 3}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint32(0), results[0].Ordinal)
	assert.Zero(t, results[0].Distance)
}

func TestSearch_InnerProductNormalizes(t *testing.T) {
	f := newTestIndex(t, 2, distance.MetricInnerProduct)
	ctx := context.Background()

	// Stored vectors are normalized, so magnitude must not affect rank.
	_, err := f.Append(ctx, [][]float32{{100, 0}, {0, 1}})
	require.NoError(t, err)

	results, err := f.Search(ctx, []float32{1, 0.1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint32(0), results[0].Ordinal)

	// Distance is the negated dot product of unit vectors.
	assert.InDelta(t, -1.0, results[0].Distance, 0.01)
}

func TestSearch_KLargerThanCount(t *testing.T) {
	f := newTestIndex(t, 2, distance.MetricSquaredL2)
	ctx := context.Background()

	_, err := f.Append(ctx, [][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)

	results, err := f.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_EmptyIndex(t *testing.T) {
	f := newTestIndex(t, 2, distance.MetricSquaredL2)

	results, err := f.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_InvalidK(t *testing.T) {
	f := newTestIndex(t, 2, distance.MetricSquaredL2)

	_, err := f.Search(context.Background(), []float32{1, 0}, 0)
	assert.ErrorIs(t, err, index.ErrInvalidK)
}

func TestSearch_ZeroQueryUnderNormalization(t *testing.T) {
	f := newTestIndex(t, 2, distance.MetricInnerProduct)

	_, err := f.Append(context.Background(), [][]float32{{1, 0}})
	require.NoError(t, err)

	_, err = f.Search(context.Background(), []float32{0, 0}, 1)
	assert.ErrorIs(t, err, index.ErrEmptyVector)
}

func TestVectorByOrdinal(t *testing.T) {
	f := newTestIndex(t, 2, distance.MetricSquaredL2)

	_, err := f.Append(context.Background(), [][]float32{{1, 2}, {3, 4}})
	require.NoError(t, err)

	v, ok := f.VectorByOrdinal(1)
	require.True(t, ok)
	assert.Equal(t, []float32{3, 4}, v)

	_, ok = f.VectorByOrdinal(2)
	assert.False(t, ok)
}

func TestSearch_BruteForceAgreement(t *testing.T) {
	f := newTestIndex(t, 4, distance.MetricSquaredL2)
	ctx := context.Background()

	vectors := make([][]float32, 50)
	for i := range vectors {
		v := make([]float32, 4)
		for j := range v {
			v[j] = float32(math.Sin(float64(i*4 + j)))
		}
		vectors[i] = v
	}
	_, err := f.Append(ctx, vectors)
	require.NoError(t, err)

	q := []float32{0.1, 0.2, 0.3, 0.4}
	results, err := f.Search(ctx, q, 5)
	require.NoError(t, err)
	require.Len(t, results, 5)

	best := results[0]
	for i, v := range vectors {
		d := distance.SquaredL2(q, v)
		assert.GreaterOrEqual(t, d, best.Distance, "ordinal %d closer than reported best", i)
	}
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance)
	}
}
