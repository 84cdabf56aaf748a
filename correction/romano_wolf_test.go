package correction

import "testing"

func TestRomanoWolfStepdownFatalOnNoStrategies(t *testing.T) {
	p := NewRomanoWolfStepdown()
	p.SetSyntheticNullDistribution([]float64{1, 2, 3})
	if _, err := p.Correct(0.10); err == nil {
		t.Fatalf("expected an error when no strategies were added")
	}
}

func TestRomanoWolfStepdownFatalOnEmptyNullDistribution(t *testing.T) {
	p := NewRomanoWolfStepdown()
	p.AddResult(Result{PValue: 0.01, Stat: 5, Strategy: strat("a")})
	if _, err := p.Correct(0.10); err == nil {
		t.Fatalf("expected an error when no null distribution is available")
	}
}

func TestRomanoWolfStepdownUsesAccumulatedNullWhenNoOverride(t *testing.T) {
	p := NewRomanoWolfStepdown()
	p.AddResult(Result{PValue: 0.01, Stat: 10, MaxPermutedStat: 1, Strategy: strat("a")})
	p.AddResult(Result{PValue: 0.20, Stat: 2, MaxPermutedStat: 9, Strategy: strat("b")})
	survivors, err := p.Correct(0.10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(survivors) == 0 {
		t.Fatalf("expected at least one survivor with a strongly dominant baseline statistic")
	}
}

func TestRomanoWolfStepdownSyntheticNullOverridesAccumulated(t *testing.T) {
	p := NewRomanoWolfStepdown()
	p.AddResult(Result{PValue: 0.01, Stat: 10, MaxPermutedStat: 20, Strategy: strat("a")})
	// The accumulated null {20} would make the candidate's empirical
	// p-value 1 (the only null value is >= its stat 10); the override null
	// {1..5} gives p-value 0, so the strategy survives only if the override
	// replaces the accumulated null.
	p.SetSyntheticNullDistribution([]float64{1, 2, 3, 4, 5})
	survivors, err := p.Correct(0.50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(survivors) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(survivors))
	}
}

func TestRomanoWolfStepdownClearForNewTestDropsOverride(t *testing.T) {
	p := NewRomanoWolfStepdown()
	p.SetSyntheticNullDistribution([]float64{1, 2, 3})
	p.AddResult(Result{PValue: 0.01, Stat: 10, Strategy: strat("a")})
	p.ClearForNewTest()
	p.AddResult(Result{PValue: 0.01, Stat: 10, MaxPermutedStat: 5, Strategy: strat("b")})
	survivors, err := p.Correct(0.50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range survivors {
		if s.Name == "a" {
			t.Fatalf("expected ClearForNewTest to drop the prior strategy")
		}
	}
}

func TestRomanoWolfStepdownAdjustedPValuesAreMinMonotone(t *testing.T) {
	p := NewRomanoWolfStepdown()
	p.AddResult(Result{PValue: 0.01, Stat: 10, MaxPermutedStat: 1, Strategy: strat("a")})
	p.AddResult(Result{PValue: 0.02, Stat: 8, MaxPermutedStat: 3, Strategy: strat("b")})
	p.AddResult(Result{PValue: 0.03, Stat: 6, MaxPermutedStat: 7, Strategy: strat("c")})
	p.AddResult(Result{PValue: 0.04, Stat: 4, MaxPermutedStat: 9, Strategy: strat("d")})
	// Loosest alpha: if min-monotonicity holds, the survivor set must be a
	// strict prefix of the stat-descending order (no gaps).
	survivors, err := p.Correct(1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(survivors) != 4 {
		t.Fatalf("expected all 4 strategies to survive alpha=1.0, got %d", len(survivors))
	}
	order := []string{"a", "b", "c", "d"}
	for i, s := range survivors {
		if s.Name != order[i] {
			t.Fatalf("survivors[%d] = %s, want %s (stat-descending order)", i, s.Name, order[i])
		}
	}
}

func TestProportionGEBoundaryValues(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	if got := proportionGE(sorted, 0); got != 1 {
		t.Fatalf("proportionGE below range = %v, want 1", got)
	}
	if got := proportionGE(sorted, 6); got != 0 {
		t.Fatalf("proportionGE above range = %v, want 0", got)
	}
	if got := proportionGE(sorted, 3); got != 0.6 {
		t.Fatalf("proportionGE(3) = %v, want 0.6", got)
	}
}
