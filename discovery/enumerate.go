package discovery

import (
	"sort"

	"github.com/chidi150c/palvalidator/ast"
	"github.com/chidi150c/palvalidator/series"
)

type triple struct {
	value     float64
	component series.Component
	offset    uint32
}

// componentOrder gives the deterministic O<H<L<C tiebreak the enumeration
// generator and the delay rewriter must agree on; components outside
// O/H/L/C sort after them, ordered by their own enum value so the order is
// still total and stable.
func componentOrder(c series.Component) int {
	switch c {
	case series.Open:
		return 0
	case series.High:
		return 1
	case series.Low:
		return 2
	case series.Close:
		return 3
	default:
		return 4 + int(c)
	}
}

// Enumerate builds the single maximal candidate predicate for one
// (anchor, length) pair under the given search mode, or ok=false if there
// is insufficient history or fewer than two comparable values.
func Enumerate(rm *ast.Manager, ts *series.TimeSeries, mode SearchMode, anchor int, length int) (ast.Predicate, bool) {
	components := mode.Components()
	triples := make([]triple, 0, length*len(components))

	for i := 0; i < length; i++ {
		offset := uint32(i)
		for _, c := range components {
			v, ok := ts.Value(c, anchor, offset)
			if !ok {
				return nil, false
			}
			triples = append(triples, triple{value: v, component: c, offset: offset})
		}
	}

	if len(triples) < 2 {
		return nil, false
	}

	sort.SliceStable(triples, func(i, j int) bool {
		if triples[i].value != triples[j].value {
			return triples[i].value > triples[j].value
		}
		if triples[i].offset != triples[j].offset {
			return triples[i].offset < triples[j].offset
		}
		return componentOrder(triples[i].component) < componentOrder(triples[j].component)
	})

	refs := make([]*ast.PriceBarRef, len(triples))
	for i, tr := range triples {
		refs[i] = rm.GetPriceBarRef(tr.component, tr.offset)
	}

	var pred ast.Predicate = rm.CreateGreaterThan(refs[0], refs[1])
	for i := 1; i < len(refs)-1; i++ {
		pred = rm.CreateAnd(pred, rm.CreateGreaterThan(refs[i], refs[i+1]))
	}
	return pred, true
}
