package correction

import "github.com/chidi150c/palvalidator/ast"

// UnadjustedSelection keeps a hypothesis as a survivor iff p_i <= alpha,
// with no adjustment. Empty input yields an empty survivor set.
type UnadjustedSelection struct {
	c container
}

func NewUnadjustedSelection() *UnadjustedSelection { return &UnadjustedSelection{} }

func (p *UnadjustedSelection) AddResult(r Result) { p.c.add(r) }

func (p *UnadjustedSelection) ClearForNewTest() { p.c.clear() }

func (p *UnadjustedSelection) Correct(alpha float64) ([]*ast.Strategy, error) {
	var survivors []*ast.Strategy
	for _, r := range p.c.sortedAscending() {
		if r.PValue <= alpha {
			survivors = append(survivors, r.Strategy)
		}
	}
	return survivors, nil
}
