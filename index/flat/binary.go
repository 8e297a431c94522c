package flat

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/quantmesh/finvec/distance"
	"github.com/quantmesh/finvec/index"
	"github.com/quantmesh/finvec/persistence"
)

// readChunkFloats bounds a single deserialization read to 4 MiB.
const readChunkFloats = 1 << 20

// WriteTo serializes the index: a fixed header followed by the raw
// vector data and a trailing CRC32 over the data section.
func (f *Flat) WriteTo(w io.Writer) (int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	h := &persistence.Header{
		Kind:        persistence.KindFlat,
		Metric:      uint8(f.metric),
		Dimension:   uint32(f.dim),
		VectorCount: uint64(f.count),
	}
	if err := persistence.WriteHeader(w, h); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	n := int64(binary.Size(h))

	cw := persistence.NewChecksumWriter(w)
	if err := binary.Write(cw, binary.LittleEndian, f.data); err != nil {
		return n, fmt.Errorf("write vectors: %w", err)
	}
	n += cw.BytesWritten()

	if err := binary.Write(w, binary.LittleEndian, cw.Sum()); err != nil {
		return n, fmt.Errorf("write checksum: %w", err)
	}
	n += 4

	return n, nil
}

// ReadFrom deserializes an index previously written by WriteTo. The
// receiver's contents are replaced.
func (f *Flat) ReadFrom(r io.Reader) (int64, error) {
	h, err := persistence.ReadHeader(r)
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	n := int64(binary.Size(h))

	if h.Kind != persistence.KindFlat {
		return n, fmt.Errorf("%w: got %d", persistence.ErrInvalidKind, h.Kind)
	}

	metric := distance.Metric(h.Metric)
	distFn, err := distance.Provider(metric)
	if err != nil {
		return n, &index.ErrInvalidMetric{Metric: metric}
	}
	if h.Dimension == 0 {
		return n, &index.ErrInvalidDimension{Dimension: int(h.Dimension)}
	}

	// The header is read before the checksum can be verified, so the
	// declared vector count is untrusted: reject counts whose payload
	// size overflows, and read in bounded chunks so a corrupt count
	// fails on truncation instead of allocating the declared size.
	want := h.VectorCount * uint64(h.Dimension)
	if want/uint64(h.Dimension) != h.VectorCount || want > (1<<61) {
		return n, fmt.Errorf("%w: vector count %d", persistence.ErrInvalidHeader, h.VectorCount)
	}

	cr := persistence.NewChecksumReader(r)
	data := make([]float32, 0, min(want, readChunkFloats))
	for remaining := want; remaining > 0; {
		chunk := min(remaining, readChunkFloats)
		buf := make([]float32, chunk)
		if err := binary.Read(cr, binary.LittleEndian, buf); err != nil {
			return n, fmt.Errorf("read vectors: %w", err)
		}
		data = append(data, buf...)
		remaining -= chunk
		n += int64(chunk) * 4
	}

	var sum uint32
	if err := binary.Read(r, binary.LittleEndian, &sum); err != nil {
		return n, fmt.Errorf("read checksum: %w", err)
	}
	n += 4

	if err := cr.Verify(sum); err != nil {
		return n, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.dim = int(h.Dimension)
	f.metric = metric
	f.distFn = distFn
	f.normalize = metric.NeedsNormalization()
	f.data = data
	f.count = len(data) / f.dim

	return n, nil
}

// SaveToFile atomically persists the index to filename.
func (f *Flat) SaveToFile(filename string) error {
	return persistence.SaveToFile(filename, func(w *bufio.Writer) error {
		_, err := f.WriteTo(w)
		return err
	})
}

// LoadFromFile reads an index from filename.
func LoadFromFile(filename string) (*Flat, error) {
	f := &Flat{}
	if err := persistence.LoadFromFile(filename, func(r *bufio.Reader) error {
		_, err := f.ReadFrom(r)
		return err
	}); err != nil {
		return nil, err
	}

	return f, nil
}
