// Package codec provides pluggable serialization for metadata artifacts.
// Artifacts record the codec name in their header, so a store can be
// reopened with a different configured codec and still decode what is on
// disk.
package codec

import (
	"fmt"
	"sync"
)

// Codec serializes metadata payloads. Name must be stable across releases
// because it is written into persisted artifacts.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is used when no codec is configured.
var Default Codec = GoJSON{}

var (
	registryMu sync.RWMutex
	registry   = map[string]Codec{}
)

// Register makes a codec resolvable by name. Codecs shipped with this
// package register themselves; callers may register custom codecs before
// opening a store whose artifacts reference them.
func Register(c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[c.Name()] = c
}

// ByName resolves a codec by its persisted name.
func ByName(name string) (Codec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", name)
	}

	return c, nil
}

func init() {
	Register(JSON{})
	Register(GoJSON{})
	Register(NewZstd(nil))
	Register(NewLZ4(nil))
}
