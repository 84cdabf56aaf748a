// Package patternsystem implements the PatternSystem aggregator: dedupe of
// discovered patterns by content hash, with a deterministic tiebreaker,
// separated into long and short sides.
package patternsystem

import (
	"sort"
	"sync"

	"github.com/chidi150c/palvalidator/ast"
)

// PatternSystem accumulates patterns discovered across anchors, deduping
// hash collisions with the SmallestVolatility tiebreaker and exposing
// deterministic hash-ordered iteration.
type PatternSystem struct {
	mu     sync.Mutex
	longs  map[uint64]*ast.Pattern
	shorts map[uint64]*ast.Pattern
}

// New builds an empty PatternSystem.
func New() *PatternSystem {
	return &PatternSystem{
		longs:  make(map[uint64]*ast.Pattern),
		shorts: make(map[uint64]*ast.Pattern),
	}
}

// AddPattern routes p to the long or short map by its entry side. If a
// pattern with the same hash already exists on that side, the
// SmallestVolatility tiebreaker decides which one is kept.
func (s *PatternSystem) AddPattern(p *ast.Pattern) {
	s.mu.Lock()
	defer s.mu.Unlock()
	table := s.longs
	if p.IsShort() {
		table = s.shorts
	}
	existing, ok := table[p.Hash()]
	if !ok {
		table[p.Hash()] = p
		return
	}
	table[p.Hash()] = smallestVolatility(existing, p)
}

// smallestVolatility keeps the pattern with the smaller stop; ties broken
// by smaller target; ties broken by keeping the first (existing) one.
func smallestVolatility(existing, candidate *ast.Pattern) *ast.Pattern {
	if candidate.StopLoss.Percent.LessThan(existing.StopLoss.Percent) {
		return candidate
	}
	if existing.StopLoss.Percent.LessThan(candidate.StopLoss.Percent) {
		return existing
	}
	if candidate.ProfitTarget.Percent.LessThan(existing.ProfitTarget.Percent) {
		return candidate
	}
	return existing
}

// Longs returns the long-side patterns sorted by hash for deterministic
// iteration.
func (s *PatternSystem) Longs() []*ast.Pattern {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedByHash(s.longs)
}

// Shorts returns the short-side patterns sorted by hash.
func (s *PatternSystem) Shorts() []*ast.Pattern {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedByHash(s.shorts)
}

// All returns longs followed by shorts, both hash-sorted.
func (s *PatternSystem) All() []*ast.Pattern {
	return append(s.Longs(), s.Shorts()...)
}

// Count returns the total number of distinct patterns held.
func (s *PatternSystem) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.longs) + len(s.shorts)
}

func sortedByHash(table map[uint64]*ast.Pattern) []*ast.Pattern {
	out := make([]*ast.Pattern, 0, len(table))
	for _, p := range table {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hash() < out[j].Hash() })
	return out
}
