// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FacetAtlas Contributors

package types

// OrderedSet is an insertion-ordered collection without duplicates.
// Membership and insertion are O(1) amortized.
//
// The zero value is ready to use. An OrderedSet is not safe for concurrent use.
type OrderedSet[T comparable] struct {
	items []T
	index map[T]int
}

// NewOrderedSet returns a set seeded with values in order, skipping repeats.
func NewOrderedSet[T comparable](values ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{}
	s.AddAll(values...)
	return s
}

// Add inserts v if absent. It returns the position of v and whether it was
// newly added; an existing value keeps its original position.
func (s *OrderedSet[T]) Add(v T) (int, bool) {
	if s.index == nil {
		s.index = make(map[T]int)
	}
	if i, ok := s.index[v]; ok {
		return i, false
	}
	s.items = append(s.items, v)
	s.index[v] = len(s.items) - 1
	return len(s.items) - 1, true
}

// AddAll inserts each value in order and returns how many were new.
func (s *OrderedSet[T]) AddAll(values ...T) int {
	added := 0
	for _, v := range values {
		if _, ok := s.Add(v); ok {
			added++
		}
	}
	return added
}

// Index returns the position of v, or -1.
func (s *OrderedSet[T]) Index(v T) int {
	if i, ok := s.index[v]; ok {
		return i
	}
	return -1
}

func (s *OrderedSet[T]) Contains(v T) bool {
	_, ok := s.index[v]
	return ok
}

func (s *OrderedSet[T]) Len() int {
	return len(s.items)
}

// At returns the value stored at position i.
func (s *OrderedSet[T]) At(i int) T {
	return s.items[i]
}

// Items returns a copy of the values in insertion order.
func (s *OrderedSet[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Clear removes every value.
func (s *OrderedSet[T]) Clear() {
	s.items = nil
	s.index = nil
}
