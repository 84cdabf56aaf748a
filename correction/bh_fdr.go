package correction

import "github.com/chidi150c/palvalidator/ast"

// DefaultFDR is the design default target false-discovery rate.
const DefaultFDR = 0.10

// BenjaminiHochbergFDR implements the classic step-up FDR procedure:
// walking from the largest rank down, it rejects at the first p-value
// with p_(rank) <= (rank/m)*Q, and every hypothesis at or below that
// rank survives.
type BenjaminiHochbergFDR struct {
	c   container
	fdr float64
}

// NewBenjaminiHochbergFDR builds a policy and records targetFDR on it.
// Correct does not read the recorded value: the Q it applies is the one
// passed to Correct.
func NewBenjaminiHochbergFDR(targetFDR float64) *BenjaminiHochbergFDR {
	return &BenjaminiHochbergFDR{fdr: targetFDR}
}

func (p *BenjaminiHochbergFDR) AddResult(r Result) { p.c.add(r) }

func (p *BenjaminiHochbergFDR) ClearForNewTest() { p.c.clear() }

// Correct ignores its alpha argument's conventional meaning and instead
// treats it as the target FDR Q, matching the BH procedure's own
// parameterization; pass DefaultFDR for the design default.
func (p *BenjaminiHochbergFDR) Correct(targetFDR float64) ([]*ast.Strategy, error) {
	sorted := p.c.sortedAscending()
	m := len(sorted)
	if m == 0 {
		return nil, nil
	}

	survivorIdx := -1
	for i := m - 1; i >= 0; i-- {
		rank := i + 1
		critical := (float64(rank) / float64(m)) * targetFDR
		if sorted[i].PValue <= critical {
			survivorIdx = i
			break
		}
	}
	if survivorIdx == -1 {
		return nil, nil
	}

	out := make([]*ast.Strategy, 0, survivorIdx+1)
	for i := 0; i <= survivorIdx; i++ {
		out = append(out, sorted[i].Strategy)
	}
	return out, nil
}
