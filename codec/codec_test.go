package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID    string         `json:"id"`
	Score float64        `json:"score"`
	Tags  map[string]int `json:"tags"`
}

func roundTrip(t *testing.T, c Codec) {
	t.Helper()

	in := payload{ID: "doc-1", Score: 0.92, Tags: map[string]int{"sector": 7}}

	data, err := c.Marshal(in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestCodecs(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}, NewZstd(nil), NewLZ4(nil), NewZstd(JSON{}), NewLZ4(JSON{})} {
		t.Run(c.Name(), func(t *testing.T) {
			roundTrip(t, c)
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json", "zstd", "lz4"} {
		c, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}

	_, err := ByName("protobuf")
	assert.Error(t, err)
}

func TestZstd_RejectsGarbage(t *testing.T) {
	var out payload
	err := NewZstd(nil).Unmarshal([]byte("not a zstd frame"), &out)
	assert.Error(t, err)
}
