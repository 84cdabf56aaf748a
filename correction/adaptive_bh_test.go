package correction

import (
	"testing"

	"github.com/chidi150c/palvalidator/ast"
)

func TestTailEstimateM0AllNullClampsToM(t *testing.T) {
	pvalues := make([]float64, 20)
	for i := range pvalues {
		pvalues[i] = 0.9
	}
	m0 := tailEstimateM0(pvalues, tailLambda)
	if m0 != float64(len(pvalues)) {
		t.Fatalf("m0 = %v, want %v when every p-value exceeds lambda", m0, len(pvalues))
	}
}

func TestTailEstimateM0FloorsAtOne(t *testing.T) {
	pvalues := make([]float64, 20)
	for i := range pvalues {
		pvalues[i] = 0.01
	}
	m0 := tailEstimateM0(pvalues, tailLambda)
	if m0 != 1 {
		t.Fatalf("m0 = %v, want 1 (floor) when every p-value is far below lambda", m0)
	}
}

func TestTailEstimateM0EmptyInput(t *testing.T) {
	if got := tailEstimateM0(nil, tailLambda); got != 0 {
		t.Fatalf("tailEstimateM0(nil) = %v, want 0", got)
	}
}

func TestPercentileInterpolatesBetweenRanks(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	if got := percentile(sorted, 0); got != 1 {
		t.Fatalf("percentile(0) = %v, want 1", got)
	}
	if got := percentile(sorted, 1); got != 5 {
		t.Fatalf("percentile(1) = %v, want 5", got)
	}
	if got := percentile(sorted, 0.5); got != 3 {
		t.Fatalf("percentile(0.5) = %v, want 3", got)
	}
}

func TestPercentileSingleElement(t *testing.T) {
	if got := percentile([]float64{42}, 0.5); got != 42 {
		t.Fatalf("percentile of a single-element slice = %v, want 42", got)
	}
}

func TestPercentileEmpty(t *testing.T) {
	if got := percentile(nil, 0.5); got != 0 {
		t.Fatalf("percentile(nil) = %v, want 0", got)
	}
}

func TestAdaptiveBHKeepsSmallestPValueAmongSurvivors(t *testing.T) {
	p := NewAdaptiveBH(1)
	pvalues := []float64{0.001, 0.004, 0.02, 0.03, 0.05, 0.07, 0.10, 0.20, 0.40, 0.80}
	for i, pv := range pvalues {
		p.AddResult(Result{PValue: pv, Strategy: strat(string(rune('a' + i)))})
	}
	survivors, err := p.Correct(0.10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(survivors) == 0 {
		t.Fatalf("expected at least one survivor among strongly-significant p-values")
	}
	// The smallest p-value must always survive alongside anything else,
	// since q-values are built by a running minimum starting from the top.
	if survivors[0].Name != "a" {
		t.Fatalf("expected the smallest p-value's strategy to survive, got %v", survivors)
	}
}

func TestAdaptiveBHEmptyInputYieldsNoSurvivors(t *testing.T) {
	p := NewAdaptiveBH(1)
	survivors, err := p.Correct(0.10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(survivors) != 0 {
		t.Fatalf("expected no survivors for empty input, got %d", len(survivors))
	}
}

func TestAdaptiveBHFamilyPartitionedCorrectsIndependently(t *testing.T) {
	p := NewAdaptiveBH(1)
	p.FamilyPartitioned = true

	longPattern, err := buildLongPattern(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	shortPattern, err := buildShortPattern(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.AddResult(Result{PValue: 0.001, Strategy: &ast.Strategy{Name: "long-a", Pattern: longPattern}})
	p.AddResult(Result{PValue: 0.80, Strategy: &ast.Strategy{Name: "short-a", Pattern: shortPattern}})

	survivors, err := p.Correct(0.10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, s := range survivors {
		if s.Name == "long-a" {
			found = true
		}
		if s.Name == "short-a" {
			t.Fatalf("did not expect the high-p-value short strategy to survive")
		}
	}
	if !found {
		t.Fatalf("expected the low-p-value long strategy to survive")
	}
}
