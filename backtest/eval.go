package backtest

import (
	"github.com/chidi150c/palvalidator/ast"
	"github.com/chidi150c/palvalidator/series"
)

// EvalPredicate evaluates a predicate at anchor bar t against ts. ok is
// false if any referenced bar is missing (insufficient history), in which
// case the caller must abandon the candidate rather than treat it as
// false.
func EvalPredicate(pred ast.Predicate, ts *series.TimeSeries, anchor int) (result bool, ok bool) {
	switch n := pred.(type) {
	case *ast.GreaterThanExpr:
		lv, ok1 := ts.Value(n.Lhs.Component, anchor, n.Lhs.Offset)
		rv, ok2 := ts.Value(n.Rhs.Component, anchor, n.Rhs.Offset)
		if !ok1 || !ok2 {
			return false, false
		}
		return lv > rv, true
	case *ast.AndExpr:
		lv, ok1 := EvalPredicate(n.Lhs, ts, anchor)
		if !ok1 {
			return false, false
		}
		rv, ok2 := EvalPredicate(n.Rhs, ts, anchor)
		if !ok2 {
			return false, false
		}
		return lv && rv, true
	default:
		return false, false
	}
}
