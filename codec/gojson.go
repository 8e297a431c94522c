package codec

import "github.com/goccy/go-json"

// GoJSON encodes payloads with goccy/go-json. It produces the same wire
// format as JSON but decodes large metadata maps considerably faster.
type GoJSON struct{}

func (GoJSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (GoJSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (GoJSON) Name() string { return "go-json" }
