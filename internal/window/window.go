// Package window holds the measured cells of a virtualized layout in a
// bounded, concurrently accessed map keyed by item index.
package window

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// shardCount must be a power of 2 for fast modulo via bitwise AND.
const (
	shardCount = 16
	shardMask  = shardCount - 1
)

// Item is one measured cell held by the window.
type Item[V any] struct {
	Value        V
	LastAccessed time.Time
	InViewport   bool

	tick uint64
}

// Map is a sharded map from item index to measured cell with access
// tracking. Eviction is explicit and removes the least recently accessed
// items first.
//
// Thread safety: Map is safe for concurrent use.
type Map[V any] struct {
	shards [shardCount]*shard[V]
	now    func() time.Time
	clock  atomic.Uint64

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[int]*Item[V]
}

// New creates an empty map. A nil now uses time.Now.
func New[V any](now func() time.Time) *Map[V] {
	if now == nil {
		now = time.Now
	}
	m := &Map[V]{now: now}
	for i := range m.shards {
		m.shards[i] = &shard[V]{items: make(map[int]*Item[V])}
	}
	return m
}

// hash spreads consecutive indices over the shards (Fibonacci hashing).
func hash(key int) uint64 {
	return (uint64(key) * 0x9E3779B97F4A7C15) >> 60
}

func (m *Map[V]) shardFor(key int) *shard[V] {
	return m.shards[hash(key)&shardMask]
}

func (m *Map[V]) touch(it *Item[V]) {
	it.LastAccessed = m.now()
	it.tick = m.clock.Add(1)
}

// Get returns the item for key and marks it accessed.
func (m *Map[V]) Get(key int) (Item[V], bool) {
	s := m.shardFor(key)

	// Fast path: read lock to check existence.
	s.mu.RLock()
	_, exists := s.items[key]
	s.mu.RUnlock()
	if !exists {
		m.misses.Add(1)
		return Item[V]{}, false
	}

	s.mu.Lock()
	it, ok := s.items[key]
	if !ok {
		s.mu.Unlock()
		m.misses.Add(1)
		return Item[V]{}, false
	}
	m.touch(it)
	out := *it
	s.mu.Unlock()

	m.hits.Add(1)
	return out, true
}

// Set stores value under key and marks it accessed.
func (m *Map[V]) Set(key int, value V) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[key]
	if !ok {
		it = &Item[V]{}
		s.items[key] = it
	}
	it.Value = value
	m.touch(it)
}

// Touch marks key accessed and records whether it is in the viewport.
// It reports false if key is absent.
func (m *Map[V]) Touch(key int, inViewport bool) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[key]
	if !ok {
		return false
	}
	it.InViewport = inViewport
	m.touch(it)
	return true
}

// Delete removes key and reports whether it was present.
func (m *Map[V]) Delete(key int) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return false
	}
	delete(s.items, key)
	return true
}

// Clear removes every item.
func (m *Map[V]) Clear() {
	for _, s := range m.shards {
		s.mu.Lock()
		s.items = make(map[int]*Item[V])
		s.mu.Unlock()
	}
}

// Len returns the number of items.
func (m *Map[V]) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.RLock()
		total += len(s.items)
		s.mu.RUnlock()
	}
	return total
}

// Rekey moves every item to the key returned by fn, dropping items for
// which fn reports false. update, if non-nil, is applied to each kept value.
// Rekey locks every shard for its duration.
func (m *Map[V]) Rekey(fn func(key int) (int, bool), update func(newKey int, v *V)) {
	for _, s := range m.shards {
		s.mu.Lock()
	}
	defer func() {
		for _, s := range m.shards {
			s.mu.Unlock()
		}
	}()

	moved := make(map[int]*Item[V])
	for _, s := range m.shards {
		for k, it := range s.items {
			nk, keep := fn(k)
			if !keep {
				continue
			}
			if update != nil {
				update(nk, &it.Value)
			}
			moved[nk] = it
		}
		s.items = make(map[int]*Item[V])
	}
	for k, it := range moved {
		m.shardFor(k).items[k] = it
	}
}

// Evict removes least recently accessed items until at most limit remain.
// Items for which keep reports true are never removed. It returns the
// number of evicted items.
func (m *Map[V]) Evict(limit int, keep func(key int) bool) int {
	type candidate struct {
		key  int
		tick uint64
	}

	var candidates []candidate
	total := 0
	for _, s := range m.shards {
		s.mu.RLock()
		total += len(s.items)
		for k, it := range s.items {
			if keep == nil || !keep(k) {
				candidates = append(candidates, candidate{key: k, tick: it.tick})
			}
		}
		s.mu.RUnlock()
	}

	excess := total - limit
	if excess <= 0 || len(candidates) == 0 {
		return 0
	}
	slices.SortFunc(candidates, func(a, b candidate) int {
		switch {
		case a.tick < b.tick:
			return -1
		case a.tick > b.tick:
			return 1
		}
		return 0
	})

	evicted := 0
	for _, c := range candidates {
		if evicted >= excess {
			break
		}
		if m.Delete(c.key) {
			evicted++
		}
	}
	m.evictions.Add(uint64(evicted))
	return evicted
}

// Stats is a snapshot of window counters.
type Stats struct {
	Len       int
	Hits      uint64
	Misses    uint64
	HitRate   float64
	Evictions uint64
}

// Stats returns current counters.
func (m *Map[V]) Stats() Stats {
	hits := m.hits.Load()
	misses := m.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:       m.Len(),
		Hits:      hits,
		Misses:    misses,
		HitRate:   hitRate,
		Evictions: m.evictions.Load(),
	}
}
