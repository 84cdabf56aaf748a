// Package correction implements the MultipleTestingCorrector policies:
// unadjusted pass-through, Benjamini-Hochberg FDR, adaptive BH-2000 with
// bootstrap pi0 estimation, Romano-Wolf stepdown, and Holm-Romano-Wolf
// step-up. All policies share a sorted-by-p-value container and a
// survivors-list result.
package correction

import (
	"sort"
	"sync"

	"github.com/chidi150c/palvalidator/ast"
)

// Family groups strategies for independent correction, e.g. long-only vs
// short-only.
type Family int

const (
	FamilyAll Family = iota
	FamilyLong
	FamilyShort
)

// Result is one tested hypothesis: a strategy's p-value and, for the
// stepdown/step-up policies, its baseline test statistic plus this
// strategy's contribution to the empirical null distribution of maximum
// permuted statistics (one draw per strategy, the max taken over that
// strategy's own permutation run).
type Result struct {
	PValue          float64
	Stat            float64
	MaxPermutedStat float64
	Strategy        *ast.Strategy
	Family          Family
}

// nullDistribution returns the accumulated MaxPermutedStat values, sorted
// ascending, for policies that build an empirical null from AddResult
// calls rather than from an externally supplied distribution.
func (c *container) nullDistribution() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]float64, len(c.results))
	for i, r := range c.results {
		out[i] = r.MaxPermutedStat
	}
	sort.Float64s(out)
	return out
}

// Policy is the small trait every correction policy implements, matching
// the design's "dynamic dispatch over correction policies" note: a single
// interface an orchestrator can be generic over instead of a concrete
// class hierarchy.
type Policy interface {
	AddResult(r Result)
	Correct(alpha float64) ([]*ast.Strategy, error)
	ClearForNewTest()
}

// container is the shared sorted-by-p-value strategy list the concrete
// policies build on, mirroring the original's mutex-guarded multimap.
type container struct {
	mu      sync.Mutex
	results []Result
}

func (c *container) add(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *container) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = nil
}

// sortedAscending returns a copy of the results sorted ascending by
// p-value.
func (c *container) sortedAscending() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Result, len(c.results))
	copy(out, c.results)
	sort.SliceStable(out, func(i, j int) bool { return out[i].PValue < out[j].PValue })
	return out
}

// byFamily partitions results into long and short families.
func (c *container) byFamily() (longs, shorts []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.results {
		if r.Strategy != nil && r.Strategy.Pattern != nil && r.Strategy.Pattern.IsShort() {
			shorts = append(shorts, r)
		} else {
			longs = append(longs, r)
		}
	}
	return longs, shorts
}
