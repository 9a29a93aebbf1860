package reactive

import (
	"sort"
	"sync"
)

// Map is a shallow reactive string-keyed map.
// Each key is tracked separately; Keys and Len track the key set.
type Map struct {
	mu   sync.RWMutex
	data map[string]any
	deps map[string]*dep
	keys *dep
}

// NewMap creates a reactive map holding a copy of init.
func NewMap(init map[string]any) *Map {
	m := &Map{
		data: make(map[string]any, len(init)),
		deps: make(map[string]*dep),
		keys: newDep(),
	}
	for k, v := range init {
		m.data[k] = v
	}
	return m
}

func (m *Map) depFor(key string) *dep {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deps[key]
	if !ok {
		d = newDep()
		m.deps[key] = d
	}
	return d
}

func (m *Map) trigger(key string) {
	m.mu.RLock()
	d := m.deps[key]
	m.mu.RUnlock()
	if d != nil {
		d.trigger()
	}
}

// Get returns the value stored under key, or nil.
func (m *Map) Get(key string) any {
	v, _ := m.Lookup(key)
	return v
}

// Lookup returns the value stored under key and whether it exists.
func (m *Map) Lookup(key string) (any, bool) {
	if IsTracking() {
		m.depFor(key).track()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// Has reports whether key exists.
func (m *Map) Has(key string) bool {
	_, ok := m.Lookup(key)
	return ok
}

// Set stores value under key, notifying subscribers when it changed.
func (m *Map) Set(key string, value any) {
	m.mu.Lock()
	old, had := m.data[key]
	changed := !had || HasChanged(old, value)
	if changed {
		m.data[key] = value
	}
	m.mu.Unlock()

	if !changed {
		return
	}
	m.trigger(key)
	if !had {
		m.keys.trigger()
	}
}

// Delete removes key, notifying subscribers when it existed.
func (m *Map) Delete(key string) {
	m.mu.Lock()
	_, had := m.data[key]
	delete(m.data, key)
	m.mu.Unlock()

	if had {
		m.trigger(key)
		m.keys.trigger()
	}
}

// Keys returns the sorted key set.
func (m *Map) Keys() []string {
	m.keys.track()
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (m *Map) Len() int {
	m.keys.track()
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Raw returns an untracked copy of the contents.
func (m *Map) Raw() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}
