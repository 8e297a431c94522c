package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquaredL2(t *testing.T) {
	assert.Equal(t, float32(27), SquaredL2([]float32{1, 2, 3}, []float32{4, 5, 6}))
	assert.Equal(t, float32(0), SquaredL2([]float32{1, 2}, []float32{1, 2}))
}

func TestDot(t *testing.T) {
	assert.Equal(t, float32(32), Dot([]float32{1, 2, 3}, []float32{4, 5, 6}))
}

func TestNormalizeL2(t *testing.T) {
	t.Run("Copy", func(t *testing.T) {
		src := []float32{3, 4}
		norm, ok := NormalizeL2Copy(src)
		require.True(t, ok)
		assert.InDelta(t, 0.6, norm[0], 1e-6)
		assert.InDelta(t, 0.8, norm[1], 1e-6)
		// Source untouched.
		assert.Equal(t, []float32{3, 4}, src)
	})

	t.Run("ZeroVector", func(t *testing.T) {
		_, ok := NormalizeL2Copy([]float32{0, 0, 0})
		assert.False(t, ok)

		assert.False(t, NormalizeL2InPlace(nil))
	})
}

func TestProvider(t *testing.T) {
	t.Run("SquaredL2", func(t *testing.T) {
		fn, err := Provider(MetricSquaredL2)
		require.NoError(t, err)
		assert.Equal(t, float32(27), fn([]float32{1, 2, 3}, []float32{4, 5, 6}))
	})

	t.Run("InnerProduct", func(t *testing.T) {
		fn, err := Provider(MetricInnerProduct)
		require.NoError(t, err)
		// Negated dot so smaller means closer.
		assert.Equal(t, float32(-32), fn([]float32{1, 2, 3}, []float32{4, 5, 6}))
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := Provider(Metric(99))
		assert.Error(t, err)
	})
}

func TestScore(t *testing.T) {
	// Zero L2 distance maps to a perfect score.
	assert.Equal(t, float32(1.0), Score(MetricSquaredL2, 0))
	assert.Equal(t, float32(0.5), Score(MetricSquaredL2, 1))

	// InnerProduct scores undo the internal negation.
	assert.Equal(t, float32(0.75), Score(MetricInnerProduct, -0.75))
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("l2")
	require.NoError(t, err)
	assert.Equal(t, MetricSquaredL2, m)

	m, err = ParseMetric("cosine")
	require.NoError(t, err)
	assert.Equal(t, MetricInnerProduct, m)

	_, err = ParseMetric("manhattan")
	assert.Error(t, err)
}
