// Copyright (c) 2025 @AmarnathCJD

package utils

import "sync"

// SyncSet is a mutex guarded set.
type SyncSet[T comparable] struct {
	mu sync.Mutex
	m  map[T]struct{}
}

func NewSyncSet[T comparable]() *SyncSet[T] {
	return &SyncSet[T]{m: make(map[T]struct{})}
}

// Add reports whether key was new.
func (s *SyncSet[T]) Add(key T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[key]; ok {
		return false
	}
	s.m[key] = struct{}{}
	return true
}

func (s *SyncSet[T]) Has(key T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[key]
	return ok
}

// Pop removes key and reports whether it was present.
func (s *SyncSet[T]) Pop(key T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[key]
	delete(s.m, key)
	return ok
}

func (s *SyncSet[T]) Keys() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]T, 0, len(s.m))
	for key := range s.m {
		keys = append(keys, key)
	}
	return keys
}

// Drain empties the set and returns what it held.
func (s *SyncSet[T]) Drain() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]T, 0, len(s.m))
	for key := range s.m {
		keys = append(keys, key)
	}
	clear(s.m)
	return keys
}

func (s *SyncSet[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
