// Package claimset provides the shared registry of output paths that have
// already been claimed for processing during one extraction run.
//
// The set is the only mutable state shared between traversal goroutines.
// Claim is a single atomic test-and-insert, which is what makes "exactly
// one worker describes each store path" hold under concurrency: among any
// number of racers for the same path, exactly one receives true.
package claimset

import "sync"

// Set is a concurrency-safe set of claimed output paths.
type Set struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

// New creates an empty claim set.
func New() *Set {
	return &Set{claimed: make(map[string]struct{})}
}

// Claim registers outputPath and reports whether this call was the first
// to do so. The empty string is never registered and always reports true:
// a derivation without a resolvable output path cannot be deduplicated,
// so every occurrence is processed.
func (s *Set) Claim(outputPath string) bool {
	if outputPath == "" {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.claimed[outputPath]; ok {
		return false
	}
	s.claimed[outputPath] = struct{}{}
	return true
}

// Len returns the number of distinct claimed paths.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.claimed)
}
