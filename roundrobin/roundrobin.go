// Package roundrobin implements the fair selector transports use to spread
// dispatch across connected sessions: an indexed list plus a monotonically
// advancing cursor modulo the current length, with the cursor adjusted on
// removal so fairness survives a mid-rotation detach. This is a direct,
// deliberately minimal implementation of a single stated design rule
// (REDESIGN FLAGS: "indexed list plus cursor, decrement on removal at or
// before the cursor"); nothing in the retrieval pack offers a selection
// algorithm this specific; see DESIGN.md for why this stays on generics +
// a mutex instead of a pulled-in dependency.
package roundrobin

import "sync"

// Selector is a generic round-robin pool over comparable items (session
// handles, worker IDs). Add/Remove/Next all serialise against each other.
type Selector[T comparable] struct {
	mu     sync.Mutex
	items  []T
	cursor int
}

// New creates an empty Selector.
func New[T comparable]() *Selector[T] {
	return &Selector[T]{}
}

// Add appends item to the rotation.
func (s *Selector[T]) Add(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
}

// Remove drops the first occurrence of item from the rotation, adjusting the
// cursor so the next Next() call still advances fairly.
func (s *Selector[T]) Remove(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, it := range s.items {
		if it == item {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	s.items = append(s.items[:idx], s.items[idx+1:]...)
	if idx <= s.cursor && s.cursor > 0 {
		s.cursor--
	}
	if len(s.items) == 0 {
		s.cursor = 0
	} else {
		s.cursor %= len(s.items)
	}
}

// Next pops the next item in rotation and advances the cursor. ok is false
// if the selector is empty.
func (s *Selector[T]) Next() (item T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return item, false
	}

	item = s.items[s.cursor]
	s.cursor = (s.cursor + 1) % len(s.items)
	return item, true
}

// Len reports how many items are currently in rotation.
func (s *Selector[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
