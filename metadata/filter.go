package metadata

// Filter is an exact-match predicate over metadata fields. All entries
// must match for a record to pass.
type Filter map[string]Value

// FilterFromMap converts a dynamically typed map into a Filter.
func FilterFromMap(m map[string]any) (Filter, error) {
	md, err := FromMap(m)
	if err != nil {
		return nil, err
	}
	return Filter(md), nil
}

// Matches reports whether md satisfies the filter. A key absent from md
// fails the filter; an empty or nil filter matches everything.
func (f Filter) Matches(md Metadata) bool {
	for k, want := range f {
		got, ok := md[k]
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}
