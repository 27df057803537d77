package hashing

import (
	"sort"
	"sync"

	"github.com/lgbarn/puzzle-extract-go/internal/chess"
)

// PositionSet is a concurrency-safe set of seen positions. The same blunder
// position reached in different games produces the same puzzle, so the
// pipeline consults the set before emitting.
type PositionSet struct {
	mu   sync.Mutex
	seen map[uint64]struct{}
}

// NewPositionSet creates an empty set.
func NewPositionSet() *PositionSet {
	return &PositionSet{seen: make(map[uint64]struct{})}
}

// CheckAndAdd atomically records the position and reports whether it had
// been seen before.
func (s *PositionSet) CheckAndAdd(board *chess.Board) bool {
	hash := HashBoard(board)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[hash]; ok {
		return true
	}
	s.seen[hash] = struct{}{}
	return false
}

// Len returns the number of distinct positions recorded.
func (s *PositionSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Hashes returns the recorded hashes in sorted order, for checkpointing.
func (s *PositionSet) Hashes() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	hashes := make([]uint64, 0, len(s.seen))
	for h := range s.seen {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	return hashes
}

// Restore merges previously checkpointed hashes back into the set.
func (s *PositionSet) Restore(hashes []uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range hashes {
		s.seen[h] = struct{}{}
	}
}
