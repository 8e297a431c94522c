package codec

import (
	"github.com/klauspost/compress/zstd"
)

// Shared across all Zstd codecs. EncodeAll/DecodeAll are safe for
// concurrent use on a single encoder/decoder pair.
var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Zstd compresses another codec's output with zstandard. Metadata
// artifacts for large namespaces shrink by an order of magnitude.
type Zstd struct {
	inner Codec
}

// NewZstd wraps inner with zstandard compression. A nil inner uses the
// default codec.
func NewZstd(inner Codec) Zstd {
	if inner == nil {
		inner = GoJSON{}
	}
	return Zstd{inner: inner}
}

func (c Zstd) Marshal(v any) ([]byte, error) {
	data, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return zstdEncoder.EncodeAll(data, nil), nil
}

func (c Zstd) Unmarshal(data []byte, v any) error {
	decoded, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return err
	}
	return c.inner.Unmarshal(decoded, v)
}

func (c Zstd) Name() string { return "zstd" }
