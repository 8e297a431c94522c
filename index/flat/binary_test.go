package flat

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmesh/finvec/distance"
	"github.com/quantmesh/finvec/persistence"
)

func TestWriteToReadFrom(t *testing.T) {
	f := newTestIndex(t, 3, distance.MetricSquaredL2)
	ctx := context.Background()

	_, err := f.Append(ctx, [][]float32{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := f.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	loaded := &Flat{}
	_, err = loaded.ReadFrom(&buf)
	require.NoError(t, err)

	assert.Equal(t, f.Count(), loaded.Count())
	assert.Equal(t, f.Dimension(), loaded.Dimension())
	assert.Equal(t, f.Metric(), loaded.Metric())

	for i := uint32(0); i < 3; i++ {
		want, _ := f.VectorByOrdinal(i)
		got, ok := loaded.VectorByOrdinal(i)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestReadFrom_CorruptMagic(t *testing.T) {
	f := newTestIndex(t, 2, distance.MetricSquaredL2)
	_, err := f.Append(context.Background(), [][]float32{{1, 0}})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)

	data := buf.Bytes()
	data[0] ^= 0xFF

	loaded := &Flat{}
	_, err = loaded.ReadFrom(bytes.NewReader(data))
	assert.ErrorIs(t, err, persistence.ErrInvalidMagic)
}

func TestReadFrom_TamperedPayload(t *testing.T) {
	f := newTestIndex(t, 2, distance.MetricSquaredL2)
	_, err := f.Append(context.Background(), [][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)

	// Flip a bit in the vector payload, past the header.
	data := buf.Bytes()
	data[len(data)-8] ^= 0x01

	loaded := &Flat{}
	_, err = loaded.ReadFrom(bytes.NewReader(data))
	assert.ErrorIs(t, err, persistence.ErrChecksumMismatch)
}

func TestReadFrom_OversizedVectorCount(t *testing.T) {
	f := newTestIndex(t, 2, distance.MetricSquaredL2)
	_, err := f.Append(context.Background(), [][]float32{{1, 0}})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)

	// A count far past the overflow bound is rejected before any
	// payload-sized allocation.
	data := buf.Bytes()
	binary.LittleEndian.PutUint64(data[16:], 1<<62)

	loaded := &Flat{}
	_, err = loaded.ReadFrom(bytes.NewReader(data))
	assert.ErrorIs(t, err, persistence.ErrInvalidHeader)
}

func TestReadFrom_TruncatedVectorCount(t *testing.T) {
	f := newTestIndex(t, 2, distance.MetricSquaredL2)
	_, err := f.Append(context.Background(), [][]float32{{1, 0}})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)

	// A plausible count with no payload behind it fails on truncation.
	data := buf.Bytes()
	binary.LittleEndian.PutUint64(data[16:], 5_000_000)

	loaded := &Flat{}
	_, err = loaded.ReadFrom(bytes.NewReader(data))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "index.fvec")

	f := newTestIndex(t, 2, distance.MetricInnerProduct)
	_, err := f.Append(context.Background(), [][]float32{{3, 4}})
	require.NoError(t, err)

	require.NoError(t, f.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Count())
	assert.Equal(t, distance.MetricInnerProduct, loaded.Metric())

	// Stored vector was normalized on append and persisted as such.
	v, ok := loaded.VectorByOrdinal(0)
	require.True(t, ok)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.fvec"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
