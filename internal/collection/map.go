package collection

import (
	"cmp"
	"maps"
	"slices"
	"sync"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/object"
)

// Map is a keyed collection of services with the same reference and
// registration discipline as List.
type Map[K cmp.Ordered, T object.Service] struct {
	object.Registry

	mu    sync.Mutex
	items map[K]object.Ref[T]
}

// NewMap allocates an empty map. The caller owns the returned reference.
func NewMap[K cmp.Ordered, T object.Service]() *Map[K, T] {
	return object.Alloc(&Map[K, T]{items: make(map[K]object.Ref[T])})
}

// Destroy runs when the last reference to the map goes away.
func (m *Map[K, T]) Destroy() {
	m.Clear()
}

// Set stores v under key, replacing and releasing any previous element.
// Storing the element already held under key is a no-op.
func (m *Map[K, T]) Set(key K, v T) {
	mustElement(v)

	m.mu.Lock()
	if old, ok := m.items[key]; ok && old.Equal(object.Adopt(v)) {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	v.RegisterClient(m)
	ref := object.NewRef(v)

	m.mu.Lock()
	old, replaced := m.items[key]
	m.items[key] = ref
	m.mu.Unlock()

	if replaced {
		m.abandon(old)
	}
}

// Get returns the element stored under key without retaining it.
func (m *Map[K, T]) Get(key K) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ref, ok := m.items[key]
	return ref.Get(), ok
}

// Delete removes key and reports whether it was present.
func (m *Map[K, T]) Delete(key K) bool {
	m.mu.Lock()
	ref, ok := m.items[key]
	delete(m.items, key)
	m.mu.Unlock()

	if ok {
		m.abandon(ref)
	}
	return ok
}

// Len returns the number of keys.
func (m *Map[K, T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Keys returns the keys in ascending order.
func (m *Map[K, T]) Keys() []K {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.items))
}

// Range calls fn for each entry in key order over a retained snapshot until
// fn returns false.
func (m *Map[K, T]) Range(fn func(key K, v T) bool) {
	m.mu.Lock()
	keys := slices.Sorted(maps.Keys(m.items))
	refs := make([]object.Ref[T], len(keys))
	for i, k := range keys {
		refs[i] = m.items[k].Clone()
	}
	m.mu.Unlock()
	defer dropAll(refs)

	for i, k := range keys {
		if !fn(k, refs[i].Get()) {
			return
		}
	}
}

// Clear removes every entry.
func (m *Map[K, T]) Clear() {
	m.mu.Lock()
	items := m.items
	m.items = make(map[K]object.Ref[T])
	m.mu.Unlock()

	for _, ref := range items {
		m.abandon(ref)
	}
}

func (m *Map[K, T]) abandon(ref object.Ref[T]) {
	ref.Get().DeregisterClient(m)
	ref.Drop()
}
