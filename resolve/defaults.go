package resolve

// DefaultsFunc is the injectable policy consulted when a relation
// assignment omits a declared edge property. It returns the value to
// fill in, or false to leave the key missing, which fails the
// assignment with a MissingPropertiesError.
//
// The library deliberately ships no policy that invents business
// defaults; the choice of values belongs to the caller.
type DefaultsFunc func(relation, key string) (any, bool)

// RejectMissing is the default policy: no key is ever filled, so any
// omitted declared property fails the assignment.
func RejectMissing(relation, key string) (any, bool) {
	return nil, false
}

// Static returns a policy serving fixed values by property key,
// regardless of relation. Keys absent from the map are rejected.
func Static(values map[string]any) DefaultsFunc {
	return func(_, key string) (any, bool) {
		v, ok := values[key]
		return v, ok
	}
}
