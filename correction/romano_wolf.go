package correction

import (
	"errors"
	"sort"

	"github.com/chidi150c/palvalidator/ast"
)

// RomanoWolfStepdown implements the Romano-Wolf stepdown procedure: it
// requires, in addition to each strategy's p-value, a baseline test
// statistic and an empirical null distribution of maximum permuted
// statistics. The null is either accumulated from AddResult's
// MaxPermutedStat field (one contribution per strategy) or supplied
// directly via SetSyntheticNullDistribution for tests and integrations
// that already have one.
//
// Unlike the other policies, empty strategies or an empty null
// distribution is a fatal error rather than an empty survivor set.
type RomanoWolfStepdown struct {
	c             container
	syntheticNull []float64
}

func NewRomanoWolfStepdown() *RomanoWolfStepdown { return &RomanoWolfStepdown{} }

func (p *RomanoWolfStepdown) AddResult(r Result) { p.c.add(r) }

func (p *RomanoWolfStepdown) ClearForNewTest() {
	p.c.clear()
	p.syntheticNull = nil
}

// SetSyntheticNullDistribution overrides the per-strategy accumulated
// null with an externally supplied one, mirroring the test/integration
// seam retained from the original implementation.
func (p *RomanoWolfStepdown) SetSyntheticNullDistribution(values []float64) {
	p.syntheticNull = append([]float64(nil), values...)
}

func (p *RomanoWolfStepdown) Correct(alpha float64) ([]*ast.Strategy, error) {
	results := p.c.sortedAscending()
	if len(results) == 0 {
		return nil, errors.New("correction: RomanoWolfStepdown requires at least one strategy")
	}

	null := p.syntheticNull
	if null == nil {
		null = p.c.nullDistribution()
	}
	if len(null) == 0 {
		return nil, errors.New("correction: RomanoWolfStepdown requires a non-empty null distribution")
	}
	sortedNull := append([]float64(nil), null...)
	sort.Float64s(sortedNull)

	byStat := append([]Result(nil), results...)
	sort.SliceStable(byStat, func(i, j int) bool { return byStat[i].Stat > byStat[j].Stat })

	m := len(byStat)
	adjusted := make([]float64, m)
	var previous float64
	for i := m - 1; i >= 0; i-- {
		empiricalP := proportionGE(sortedNull, byStat[i].Stat)
		candidate := empiricalP * (float64(m) / float64(i+1))
		if i == m-1 {
			adjusted[i] = candidate
		} else {
			adjusted[i] = min(previous, candidate)
		}
		previous = adjusted[i]
	}

	var out []*ast.Strategy
	for i, r := range byStat {
		if adjusted[i] <= alpha {
			out = append(out, r.Strategy)
		}
	}
	return out, nil
}

// proportionGE returns the fraction of sortedAscending values >= x.
func proportionGE(sortedAscending []float64, x float64) float64 {
	n := len(sortedAscending)
	idx := sort.SearchFloat64s(sortedAscending, x)
	return float64(n-idx) / float64(n)
}
