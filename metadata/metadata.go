// Package metadata defines the scalar metadata model attached to stored
// vectors and the filter predicate evaluated at query time.
package metadata

// Metadata is the set of scalar fields attached to a vector.
type Metadata map[string]Value

// FromMap converts a dynamically typed map into Metadata. It fails if
// any value is not a supported scalar.
func FromMap(m map[string]any) (Metadata, error) {
	if m == nil {
		return nil, nil
	}

	md := make(Metadata, len(m))
	for k, v := range m {
		val, err := FromAny(v)
		if err != nil {
			return nil, err
		}
		md[k] = val
	}

	return md, nil
}

// ToMap converts Metadata back to a dynamically typed map.
func (m Metadata) ToMap() map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Any()
	}

	return out
}

// Clone returns a shallow copy. Values are scalars, so a shallow copy is
// a deep copy.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}

	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}
