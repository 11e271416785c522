package keylock

import (
	"sort"
	"sync"
)

// Map provides mutual exclusion keyed by string. Every mutation of a
// player balance happens under that player's key, so concurrent requests
// for the same player serialize while unrelated players proceed freely.
type Map struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New creates an empty keyed lock map
func New() *Map {
	return &Map{
		locks: make(map[string]*entry),
	}
}

// Lock acquires the locks for the given keys and returns an unlock
// function. Keys are deduplicated and acquired in sorted order so that
// two callers locking the same pair can never deadlock.
func (m *Map) Lock(keys ...string) func() {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			sorted = append(sorted, k)
		}
	}
	sort.Strings(sorted)

	entries := make([]*entry, len(sorted))
	for i, k := range sorted {
		entries[i] = m.acquire(k)
	}
	for _, e := range entries {
		e.mu.Lock()
	}

	var once sync.Once
	return func() {
		// Idempotent so callers may release early and still defer
		once.Do(func() {
			// Release in reverse acquisition order
			for i := len(entries) - 1; i >= 0; i-- {
				entries[i].mu.Unlock()
				m.release(sorted[i])
			}
		})
	}
}

func (m *Map) acquire(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{}
		m.locks[key] = e
	}
	e.refs++
	return e
}

func (m *Map) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.locks[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
}
