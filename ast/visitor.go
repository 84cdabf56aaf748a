package ast

// Visitor is the stable external surface that code generators (out of
// scope for this module) consume: one method per concrete variant named
// in the predicate/entry/stop/target sum. Internal rewriters (the delay
// shifter) implement this same interface instead of a bespoke traversal.
type Visitor interface {
	VisitPriceBarRef(*PriceBarRef) Node
	VisitGreaterThan(*GreaterThanExpr) Node
	VisitAnd(*AndExpr) Node
	VisitEntry(*Entry) Node
	VisitProfitTarget(*ProfitTarget) Node
	VisitStopLoss(*StopLoss) Node
}

// Node is the result type a Visitor produces; concrete visitors assert the
// concrete type they expect back (rewriters expect nodes of the same kind
// they visited).
type Node interface{}

// AcceptPredicate dispatches a predicate to the matching Visitor method.
// It does not recurse into AndExpr children; VisitAnd implementations
// decide whether and in which order to visit them.
func AcceptPredicate(v Visitor, p Predicate) Node {
	switch n := p.(type) {
	case *GreaterThanExpr:
		return v.VisitGreaterThan(n)
	case *AndExpr:
		return v.VisitAnd(n)
	default:
		panic("ast: unknown predicate variant")
	}
}
