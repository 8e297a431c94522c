package metadata

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap(t *testing.T) {
	md, err := FromMap(map[string]any{
		"ticker":  "ACME",
		"year":    2024,
		"pe":      18.5,
		"audited": true,
		"note":    nil,
	})
	require.NoError(t, err)

	assert.Equal(t, String("ACME"), md["ticker"])
	assert.Equal(t, Int(2024), md["year"])
	assert.Equal(t, Float(18.5), md["pe"])
	assert.Equal(t, Bool(true), md["audited"])
	assert.Equal(t, Null(), md["note"])
}

func TestFromMap_Unsupported(t *testing.T) {
	_, err := FromMap(map[string]any{"bad": []string{"a"}})
	assert.Error(t, err)
}

func TestValueEqual_NumericCrossKind(t *testing.T) {
	assert.True(t, Int(7).Equal(Float(7)))
	assert.True(t, Float(7).Equal(Int(7)))
	assert.False(t, Int(7).Equal(Float(7.5)))
	assert.False(t, Int(7).Equal(String("7")))
}

func TestFilterMatches(t *testing.T) {
	md := Metadata{"sector": String("tech"), "year": Int(2024)}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"nil filter", nil, true},
		{"empty filter", Filter{}, true},
		{"single match", Filter{"sector": String("tech")}, true},
		{"all match", Filter{"sector": String("tech"), "year": Int(2024)}, true},
		{"value mismatch", Filter{"sector": String("energy")}, false},
		{"missing key", Filter{"region": String("eu")}, false},
		{"partial match fails", Filter{"sector": String("tech"), "region": String("eu")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(md))
		})
	}
}

func TestFilterMatches_AfterJSONRoundTrip(t *testing.T) {
	md := Metadata{"year": Int(2024)}

	data, err := json.Marshal(md)
	require.NoError(t, err)

	var decoded Metadata
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Kind is encoded explicitly, so the int survives the round trip and
	// still matches an int filter.
	assert.True(t, Filter{"year": Int(2024)}.Matches(decoded))
}
