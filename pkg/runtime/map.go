package runtime

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// MapValue is an insertion-ordered text-keyed map shared by reference.
// Re-setting an existing key keeps its original position.
type MapValue struct {
	entries *linkedhashmap.Map
}

// NewMap returns an empty map.
func NewMap() *MapValue {
	return &MapValue{entries: linkedhashmap.New()}
}

// Kind reports KindMap.
func (m *MapValue) Kind() Kind { return KindMap }

// Get returns the value stored under key and whether it was present.
func (m *MapValue) Get(key string) (Value, bool) {
	raw, ok := m.entries.Get(key)
	if !ok {
		return nil, false
	}
	return raw.(Value), true
}

// Set stores value under key, appending the key if it is new.
func (m *MapValue) Set(key string, value Value) {
	m.entries.Put(key, value)
}

// Has reports whether key is present.
func (m *MapValue) Has(key string) bool {
	_, ok := m.entries.Get(key)
	return ok
}

// Delete removes key; deleting a missing key is a no-op.
func (m *MapValue) Delete(key string) {
	m.entries.Remove(key)
}

// Len returns the number of entries.
func (m *MapValue) Len() int {
	return m.entries.Size()
}

// Keys returns keys in insertion order.
func (m *MapValue) Keys() []string {
	raw := m.entries.Keys()
	keys := make([]string, len(raw))
	for idx, k := range raw {
		keys[idx] = k.(string)
	}
	return keys
}

// Values returns values in insertion order.
func (m *MapValue) Values() []Value {
	raw := m.entries.Values()
	values := make([]Value, len(raw))
	for idx, v := range raw {
		values[idx] = v.(Value)
	}
	return values
}

// Each visits entries in insertion order until fn returns false.
func (m *MapValue) Each(fn func(key string, value Value) bool) {
	it := m.entries.Iterator()
	for it.Next() {
		if !fn(it.Key().(string), it.Value().(Value)) {
			return
		}
	}
}

// Copy returns a shallow copy preserving order.
func (m *MapValue) Copy() *MapValue {
	out := NewMap()
	m.Each(func(key string, value Value) bool {
		out.Set(key, value)
		return true
	})
	return out
}

// Merge copies every entry of other into m; later keys overwrite earlier ones.
func (m *MapValue) Merge(other *MapValue) {
	other.Each(func(key string, value Value) bool {
		m.Set(key, value)
		return true
	})
}

// MapOf builds a map from alternating key/value arguments.
func MapOf(pairs ...any) *MapValue {
	m := NewMap()
	for idx := 0; idx+1 < len(pairs); idx += 2 {
		m.Set(pairs[idx].(string), pairs[idx+1].(Value))
	}
	return m
}
