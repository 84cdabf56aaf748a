package correction

import (
	"errors"
	"sort"

	"github.com/chidi150c/palvalidator/ast"
)

// HolmRomanoWolf implements the Holm-Romano-Wolf step-up variant: same
// baseline-statistic and empirical-null inputs as RomanoWolfStepdown, but
// walked forward from the largest baseline statistic with max-monotone
// adjusted p-values rather than backward with min-monotone ones.
//
// Empty strategies or an empty null distribution is fatal, matching
// RomanoWolfStepdown.
type HolmRomanoWolf struct {
	c             container
	syntheticNull []float64
}

func NewHolmRomanoWolf() *HolmRomanoWolf { return &HolmRomanoWolf{} }

func (p *HolmRomanoWolf) AddResult(r Result) { p.c.add(r) }

func (p *HolmRomanoWolf) ClearForNewTest() {
	p.c.clear()
	p.syntheticNull = nil
}

// SetSyntheticNullDistribution overrides the per-strategy accumulated
// null with an externally supplied one.
func (p *HolmRomanoWolf) SetSyntheticNullDistribution(values []float64) {
	p.syntheticNull = append([]float64(nil), values...)
}

func (p *HolmRomanoWolf) Correct(alpha float64) ([]*ast.Strategy, error) {
	results := p.c.sortedAscending()
	if len(results) == 0 {
		return nil, errors.New("correction: HolmRomanoWolf requires at least one strategy")
	}

	null := p.syntheticNull
	if null == nil {
		null = p.c.nullDistribution()
	}
	if len(null) == 0 {
		return nil, errors.New("correction: HolmRomanoWolf requires a non-empty null distribution")
	}
	sortedNull := append([]float64(nil), null...)
	sort.Float64s(sortedNull)

	byStat := append([]Result(nil), results...)
	sort.SliceStable(byStat, func(i, j int) bool { return byStat[i].Stat > byStat[j].Stat })

	m := len(byStat)
	adjusted := make([]float64, m)
	var previous float64
	for i := 0; i < m; i++ {
		empiricalP := proportionGE(sortedNull, byStat[i].Stat)
		candidate := empiricalP * float64(m-i)
		if i == 0 {
			adjusted[i] = candidate
		} else {
			adjusted[i] = max(previous, candidate)
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
