package correction

import (
	"math"
	"math/rand"
	"sort"

	"github.com/chidi150c/palvalidator/ast"
)

const (
	// tailLambda is the threshold used by the pi0 tail estimator.
	tailLambda = 0.5
	// bootstrapSamples is the number of bootstrap resamples drawn when
	// m >= fullBootstrapThreshold.
	bootstrapSamples = 1000
	// fullBootstrapThreshold is the smallest m at which the full
	// bootstrap estimator is used in place of the plain tail estimator.
	fullBootstrapThreshold = 30
)

// AdaptiveBH implements AdaptiveBH-2000: it estimates m0, the number of
// true nulls, via a tail estimator (small m) or a bootstrap of the tail
// estimator (larger m), then computes monotone q-values in reverse rank
// order and selects survivors at q_i <= target FDR.
//
// FamilyPartitioned, when true, splits results into long and short
// families via the shared container and corrects each independently,
// per the design's optional family-partitioning mode.
type AdaptiveBH struct {
	c                 container
	FamilyPartitioned bool
	Rand              *rand.Rand
}

// NewAdaptiveBH builds a policy with a deterministic bootstrap PRNG seed.
func NewAdaptiveBH(seed int64) *AdaptiveBH {
	return &AdaptiveBH{Rand: rand.New(rand.NewSource(seed))}
}

func (p *AdaptiveBH) AddResult(r Result) { p.c.add(r) }

func (p *AdaptiveBH) ClearForNewTest() { p.c.clear() }

func (p *AdaptiveBH) Correct(targetFDR float64) ([]*ast.Strategy, error) {
	if !p.FamilyPartitioned {
		return p.correctSet(p.c.sortedAscending(), targetFDR), nil
	}

	longs, shorts := p.c.byFamily()
	sortByPValue(longs)
	sortByPValue(shorts)
	survivors := p.correctSet(longs, targetFDR)
	survivors = append(survivors, p.correctSet(shorts, targetFDR)...)
	return survivors, nil
}

func sortByPValue(rs []Result) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].PValue < rs[j].PValue })
}

// correctSet runs the estimate-m0-then-q-value procedure over one
// already-ascending-sorted set of results.
func (p *AdaptiveBH) correctSet(sorted []Result, targetFDR float64) []*ast.Strategy {
	m := len(sorted)
	if m == 0 {
		return nil
	}

	pvalues := make([]float64, m)
	for i, r := range sorted {
		pvalues[i] = r.PValue
	}

	m0 := p.estimateM0(pvalues)

	q := make([]float64, m)
	q[m-1] = math.Min(1, m0*pvalues[m-1]/float64(m))
	for i := m - 2; i >= 0; i-- {
		candidate := m0 * pvalues[i] / float64(i+1)
		q[i] = math.Min(q[i+1], candidate)
	}

	var out []*ast.Strategy
	for i, r := range sorted {
		if q[i] <= targetFDR {
			out = append(out, r.Strategy)
		}
	}
	return out
}

// estimateM0 selects the tail estimator for m < fullBootstrapThreshold,
// else a bootstrap of the tail estimator with a fallback to the plain
// tail estimator when the bootstrap is too unstable or implausible.
func (p *AdaptiveBH) estimateM0(pvalues []float64) float64 {
	m := len(pvalues)
	tail := tailEstimateM0(pvalues, tailLambda)
	if m < fullBootstrapThreshold {
		return tail
	}

	samples := make([]float64, bootstrapSamples)
	for b := 0; b < bootstrapSamples; b++ {
		resample := make([]float64, m)
		for i := 0; i < m; i++ {
			resample[i] = pvalues[p.Rand.Intn(m)]
		}
		samples[b] = tailEstimateM0(resample, tailLambda)
	}
	sort.Float64s(samples)

	median := percentile(samples, 0.50)
	lo := percentile(samples, 0.025)
	hi := percentile(samples, 0.975)
	ciWidth := hi - lo
	m0 := median * float64(m)

	if ciWidth > 0.4*float64(m) || m0 < math.Max(10, 0.25*float64(m)) || m0 > float64(m) {
		return tail
	}
	return m0
}

// tailEstimateM0 is the pi0 tail estimator: pi0 = count(p_i > lambda) /
// ((1-lambda)*m), m0 = clamp(pi0, [0,1]) * m, floored at 1.
func tailEstimateM0(pvalues []float64, lambda float64) float64 {
	m := len(pvalues)
	if m == 0 {
		return 0
	}
	var count int
	for _, p := range pvalues {
		if p > lambda {
			count++
		}
	}
	pi0 := float64(count) / ((1 - lambda) * float64(m))
	if pi0 > 1 {
		pi0 = 1
	}
	m0 := pi0 * float64(m)
	if m0 < 1 {
		m0 = 1
	}
	return m0
}

// percentile returns the value at the given fraction (0..1) of an
// already-ascending-sorted slice, linearly interpolating between the two
// neighbouring ranks when the position falls between them.
func percentile(sorted []float64, frac float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := frac * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac2 := pos - float64(lo)
	return sorted[lo]*(1-frac2) + sorted[hi]*frac2
}
