// Package state holds the filter criteria owned by one listing page.
package state

import (
	"sync"

	"kaamkhojo-engine/internal/filter"
)

// Listener receives the criteria before and after a change.
type Listener func(prev, next filter.Criteria)

// Store is an explicit, injectable filter state container. Every Update or
// Clear produces exactly one notification carrying the complete new snapshot.
//
// Listeners run synchronously on the caller's goroutine and must not call
// Update or Clear themselves.
type Store struct {
	// serializes mutation+notify so listeners observe changes in order
	writeMu sync.Mutex

	mu        sync.RWMutex
	cur       filter.Criteria
	listeners map[int]Listener
	nextID    int
}

func New(initial filter.Criteria) *Store {
	return &Store{
		cur:       initial,
		listeners: make(map[int]Listener),
	}
}

func (s *Store) Snapshot() filter.Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *Store) HasActiveFilters() bool {
	return s.Snapshot().HasActive()
}

// Update shallow-merges p into the current criteria.
func (s *Store) Update(p filter.Patch) {
	s.commit(func(c filter.Criteria) filter.Criteria { return c.Merge(p) })
}

// SetSearch updates the free-text query and location together, the way the
// search bar submits them.
func (s *Store) SetSearch(query, location string) {
	s.Update(filter.Patch{
		filter.KeyKeyword:  query,
		filter.KeyLocation: location,
	})
}

// Clear resets every key to its sentinel in a single step.
func (s *Store) Clear() {
	s.commit(func(filter.Criteria) filter.Criteria { return filter.Default() })
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) commit(change func(filter.Criteria) filter.Criteria) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	prev := s.cur
	next := change(prev)
	s.cur = next
	ls := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			ls = append(ls, l)
		}
	}
	s.mu.Unlock()

	for _, l := range ls {
		l(prev, next)
	}
}
