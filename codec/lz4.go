package codec

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 compresses another codec's output with lz4 frames. It trades
// ratio for speed relative to Zstd.
type LZ4 struct {
	inner Codec
}

// NewLZ4 wraps inner with lz4 compression. A nil inner uses the default
// codec.
func NewLZ4(inner Codec) LZ4 {
	if inner == nil {
		inner = GoJSON{}
	}
	return LZ4{inner: inner}
}

func (c LZ4) Marshal(v any) ([]byte, error) {
	data, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (c LZ4) Unmarshal(data []byte, v any) error {
	zr := lz4.NewReader(bytes.NewReader(data))
	decoded, err := io.ReadAll(zr)
	if err != nil {
		return err
	}
	return c.inner.Unmarshal(decoded, v)
}

func (c LZ4) Name() string { return "lz4" }
