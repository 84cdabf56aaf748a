package patternsystem

import (
	"testing"

	"github.com/chidi150c/palvalidator/ast"
)

func buildPattern(t *testing.T, rm *ast.Manager, filename string, long bool, targetPct, stopPct string) *ast.Pattern {
	t.Helper()
	target, err := rm.GetDecimal(targetPct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stop, err := rm.GetDecimal(stopPct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pred := rm.CreateGreaterThan(rm.GetPriceOpen(0), rm.GetPriceClose(0))
	desc := &ast.PatternDescription{Filename: filename}
	entry := rm.GetLongEntryOnOpen()
	profitTarget := rm.GetLongProfitTarget(target)
	stopLoss := rm.GetLongStopLoss(stop)
	if !long {
		entry = rm.GetShortEntryOnOpen()
		profitTarget = rm.GetShortProfitTarget(target)
		stopLoss = rm.GetShortStopLoss(stop)
	}
	pat, err := rm.CreatePattern(desc, pred, entry, profitTarget, stopLoss, ast.VolatilityNone, ast.PortfolioNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return pat
}

func TestAddPatternRoutesByEntrySide(t *testing.T) {
	rm := ast.NewManager()
	ps := New()
	long := buildPattern(t, rm, "long", true, "2.0", "1.0")
	short := buildPattern(t, rm, "short", false, "2.0", "1.0")
	ps.AddPattern(long)
	ps.AddPattern(short)

	if len(ps.Longs()) != 1 {
		t.Fatalf("expected 1 long pattern, got %d", len(ps.Longs()))
	}
	if len(ps.Shorts()) != 1 {
		t.Fatalf("expected 1 short pattern, got %d", len(ps.Shorts()))
	}
	if ps.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", ps.Count())
	}
}

func TestAddPatternSameHashOverwritesWithTiebreakWinner(t *testing.T) {
	rm := ast.NewManager()
	ps := New()
	// Two additions of the exact same (predicate, description, entry,
	// target, stop) intern to the same Pattern value and thus the same
	// hash; re-adding it must leave the system with one entry.
	pat := buildPattern(t, rm, "same", true, "2.0", "1.0")
	ps.AddPattern(pat)
	ps.AddPattern(pat)
	if ps.Count() != 1 {
		t.Fatalf("expected re-adding an identical pattern to dedupe, got Count()=%d", ps.Count())
	}
}

func TestSmallestVolatilityPrefersSmallerStop(t *testing.T) {
	rm := ast.NewManager()
	wide := buildPattern(t, rm, "a", true, "2.0", "3.0")
	tight := buildPattern(t, rm, "b", true, "2.0", "1.0")

	if got := smallestVolatility(wide, tight); got != tight {
		t.Fatalf("expected the pattern with the smaller stop to be kept")
	}
	if got := smallestVolatility(tight, wide); got != tight {
		t.Fatalf("expected the pattern with the smaller stop to be kept regardless of argument order")
	}
}

func TestSmallestVolatilityTiebreaksOnSmallerTarget(t *testing.T) {
	rm := ast.NewManager()
	widerTarget := buildPattern(t, rm, "a", true, "5.0", "1.0")
	tighterTarget := buildPattern(t, rm, "b", true, "2.0", "1.0")

	if got := smallestVolatility(widerTarget, tighterTarget); got != tighterTarget {
		t.Fatalf("expected the pattern with the smaller target to be kept on an equal-stop tie")
	}
}

func TestSmallestVolatilityKeepsExistingOnFullTie(t *testing.T) {
	rm := ast.NewManager()
	a := buildPattern(t, rm, "a", true, "2.0", "1.0")
	b := buildPattern(t, rm, "b", true, "2.0", "1.0")

	if got := smallestVolatility(a, b); got != a {
		t.Fatalf("expected the existing pattern to be kept on a full tie")
	}
}

func TestAllReturnsLongsThenShortsHashSorted(t *testing.T) {
	rm := ast.NewManager()
	ps := New()
	ps.AddPattern(buildPattern(t, rm, "l1", true, "2.0", "1.0"))
	ps.AddPattern(buildPattern(t, rm, "l2", true, "3.0", "1.5"))
	ps.AddPattern(buildPattern(t, rm, "s1", false, "2.0", "1.0"))

	all := ps.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 total patterns, got %d", len(all))
	}
	longs := ps.Longs()
	if len(longs) != 2 || longs[0].Hash() > longs[1].Hash() {
		t.Fatalf("expected Longs() to be sorted ascending by hash")
	}
}

func TestCountOnEmptySystem(t *testing.T) {
	ps := New()
	if ps.Count() != 0 {
		t.Fatalf("expected Count() == 0 on an empty system")
	}
}
