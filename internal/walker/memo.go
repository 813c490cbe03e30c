package walker

// Memo caches derived values for the lifetime of one analysis run. It is
// created by the caller of a run and handed to every rule so unrelated rules
// share expensive lookups. A Memo is not safe for concurrent use; a run is
// single threaded.
type Memo struct {
	values map[string]any
	misses int
}

// NewMemo returns an empty cache.
func NewMemo() *Memo {
	return &Memo{values: make(map[string]any)}
}

// Len reports how many keys have been computed.
func (m *Memo) Len() int {
	if m == nil {
		return 0
	}
	return len(m.values)
}

// Misses reports how many times a factory was invoked.
func (m *Memo) Misses() int {
	if m == nil {
		return 0
	}
	return m.misses
}

// Memoize returns the value stored under key, computing it with factory on
// the first call. A nil memo computes every time.
//
// A key must always be used with the same T; a mismatch panics, as it would
// for any bad type assertion.
func Memoize[T any](m *Memo, key string, factory func() T) T {
	if m == nil {
		return factory()
	}
	if v, ok := m.values[key]; ok {
		return v.(T)
	}
	v := factory()
	m.values[key] = v
	m.misses++
	return v
}
