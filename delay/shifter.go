// Package delay implements the offset-shifting rewrite a surviving base
// pattern undergoes to produce additional delayed candidates, adapted from
// the discovery task's AstOffsetShifter visitor.
package delay

import (
	"fmt"

	"github.com/chidi150c/palvalidator/ast"
)

// Shifter rewrites a predicate tree so every PriceBarRef's offset is
// increased by a fixed delay k, rebuilding every node through the
// resource manager. It does not mutate the nodes it visits.
type Shifter struct {
	rm *ast.Manager
	k  uint32
}

// NewShifter builds a shifter for the resource manager rm and delay k.
func NewShifter(rm *ast.Manager, k uint32) *Shifter {
	return &Shifter{rm: rm, k: k}
}

// VisitPriceBarRef returns the interned reference at offset+k.
func (s *Shifter) VisitPriceBarRef(r *ast.PriceBarRef) ast.Node {
	return s.rm.GetPriceBarRef(r.Component, r.Offset+s.k)
}

// VisitGreaterThan rebuilds the comparison with both operands shifted.
func (s *Shifter) VisitGreaterThan(g *ast.GreaterThanExpr) ast.Node {
	lhs := s.VisitPriceBarRef(g.Lhs).(*ast.PriceBarRef)
	rhs := s.VisitPriceBarRef(g.Rhs).(*ast.PriceBarRef)
	return s.rm.CreateGreaterThan(lhs, rhs)
}

// VisitAnd rebuilds the conjunction with both sides shifted.
func (s *Shifter) VisitAnd(a *ast.AndExpr) ast.Node {
	lhs := s.shiftPredicate(a.Lhs)
	rhs := s.shiftPredicate(a.Rhs)
	return s.rm.CreateAnd(lhs, rhs)
}

// VisitEntry, VisitProfitTarget, VisitStopLoss are unused by offset
// shifting; they satisfy ast.Visitor so Shifter can also serve as a
// degenerate code-gen visitor if a caller wants identity passthrough.
func (s *Shifter) VisitEntry(e *ast.Entry) ast.Node             { return e }
func (s *Shifter) VisitProfitTarget(p *ast.ProfitTarget) ast.Node { return p }
func (s *Shifter) VisitStopLoss(sl *ast.StopLoss) ast.Node       { return sl }

func (s *Shifter) shiftPredicate(p ast.Predicate) ast.Predicate {
	switch n := p.(type) {
	case *ast.GreaterThanExpr:
		return s.VisitGreaterThan(n).(*ast.GreaterThanExpr)
	case *ast.AndExpr:
		return s.VisitAnd(n).(*ast.AndExpr)
	default:
		panic("delay: unknown predicate variant")
	}
}

// Shift rewrites a whole predicate tree by delay k.
func (s *Shifter) Shift(p ast.Predicate) ast.Predicate {
	return s.shiftPredicate(p)
}

// Filename builds the `{symbol}_L{L}_D{k}` convention the delayed
// pattern's description carries.
func Filename(symbol string, length int, delay uint32) string {
	return fmt.Sprintf("%s_L%d_D%d", symbol, length, delay)
}
