package mcpt

import (
	"context"
	"errors"
	"testing"

	"github.com/chidi150c/palvalidator/ast"
	"github.com/chidi150c/palvalidator/backtest"
	"github.com/chidi150c/palvalidator/series"
)

type fakePositionHistory struct{ n uint32 }

func (h fakePositionHistory) NumPositions() uint32 { return h.n }

// fakeBacktester is a scripted backtest.Backtester: every instance reports
// a fixed position count and profit factor, letting driver tests pin down
// the exact p-value the permutation count formula should produce.
type fakeBacktester struct {
	positions    uint32
	profitFactor float64
	backtestErr  error
}

func (f *fakeBacktester) AddStrategy(s *ast.Strategy) error { return nil }
func (f *fakeBacktester) Clone() backtest.Backtester        { return f }
func (f *fakeBacktester) Backtest(ctx context.Context) error { return f.backtestErr }
func (f *fakeBacktester) ClosedPositionHistory() backtest.PositionHistory {
	return fakePositionHistory{f.positions}
}
func (f *fakeBacktester) Profitability() (float64, float64) { return f.profitFactor, 50 }
func (f *fakeBacktester) NumConsecutiveLosses() uint32      { return 0 }
func (f *fakeBacktester) GetNumTrades() uint32              { return f.positions }
func (f *fakeBacktester) GetNumBarsInTrades() uint32        { return 0 }

type fakeSource struct {
	series *series.TimeSeries
	err    error
}

func (f *fakeSource) CreateSyntheticSeries(original *series.TimeSeries, tick float64) (*series.TimeSeries, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

func testStrategy() *ast.Strategy {
	return &ast.Strategy{Name: "fake", InstanceUUID: "uuid-1"}
}

func TestDriverRunRejectsTooFewPermutations(t *testing.T) {
	d := &Driver{Strategy: testStrategy(), NumPermutations: MinPermutations - 1}
	if _, err := d.Run(context.Background()); err == nil {
		t.Fatalf("expected an error for NumPermutations below the minimum")
	}
}

func TestDriverRunReturnsSentinelOnInsufficientBaselineTrades(t *testing.T) {
	baseline := &fakeBacktester{positions: 3}
	d := &Driver{
		Strategy:        testStrategy(),
		OriginalSeries:  series.NewTimeSeries(nil),
		NewBacktester:   func(ts *series.TimeSeries) backtest.Backtester { return baseline },
		Synthetic:       &fakeSource{series: series.NewTimeSeries(nil)},
		Metric:          ProfitFactorMetric,
		NumPermutations: MinPermutations,
	}
	p, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != InsufficientTradesSentinel {
		t.Fatalf("p = %v, want sentinel %v", p, InsufficientTradesSentinel)
	}
}

func TestDriverRunAllPermutationsAtOrAboveBaselineYieldsPValueOne(t *testing.T) {
	calls := 0
	d := &Driver{
		Strategy:       testStrategy(),
		OriginalSeries: series.NewTimeSeries(nil),
		NewBacktester: func(ts *series.TimeSeries) backtest.Backtester {
			calls++
			if calls == 1 {
				return &fakeBacktester{positions: 10, profitFactor: 1.5}
			}
			return &fakeBacktester{positions: 10, profitFactor: 1.5}
		},
		Synthetic:       &fakeSource{series: series.NewTimeSeries(nil)},
		Metric:          ProfitFactorMetric,
		NumPermutations: MinPermutations,
	}
	p, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != 1.0 {
		t.Fatalf("p = %v, want 1.0 when every permutation ties the baseline", p)
	}
}

func TestDriverRunNoPermutationsAtOrAboveBaselineYieldsMinimumPValue(t *testing.T) {
	calls := 0
	d := &Driver{
		Strategy:       testStrategy(),
		OriginalSeries: series.NewTimeSeries(nil),
		NewBacktester: func(ts *series.TimeSeries) backtest.Backtester {
			calls++
			if calls == 1 {
				return &fakeBacktester{positions: 10, profitFactor: 2.0}
			}
			return &fakeBacktester{positions: 10, profitFactor: 0.1}
		},
		Synthetic:       &fakeSource{series: series.NewTimeSeries(nil)},
		Metric:          ProfitFactorMetric,
		NumPermutations: MinPermutations,
	}
	p, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 1.0 / float64(MinPermutations+1)
	if p != want {
		t.Fatalf("p = %v, want %v", p, want)
	}
}

func TestDriverRunRedrawsPermutationsWithTooFewTrades(t *testing.T) {
	calls := 0
	d := &Driver{
		Strategy:       testStrategy(),
		OriginalSeries: series.NewTimeSeries(nil),
		NewBacktester: func(ts *series.TimeSeries) backtest.Backtester {
			calls++
			if calls == 1 {
				return &fakeBacktester{positions: 10, profitFactor: 1.0}
			}
			// Every permuted draw after the baseline alternates between an
			// unusable low-trade-count run (must be redrawn) and a usable one.
			if calls%2 == 0 {
				return &fakeBacktester{positions: 1, profitFactor: 99}
			}
			return &fakeBacktester{positions: 10, profitFactor: 0.5}
		},
		Synthetic:       &fakeSource{series: series.NewTimeSeries(nil)},
		Metric:          ProfitFactorMetric,
		NumPermutations: MinPermutations,
	}
	p, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p <= 0 || p > 1 {
		t.Fatalf("p = %v, expected a value in (0,1]", p)
	}
}

func TestDriverRunPropagatesBacktestError(t *testing.T) {
	wantErr := errors.New("boom")
	d := &Driver{
		Strategy:        testStrategy(),
		OriginalSeries:  series.NewTimeSeries(nil),
		NewBacktester:   func(ts *series.TimeSeries) backtest.Backtester { return &fakeBacktester{backtestErr: wantErr} },
		Synthetic:       &fakeSource{series: series.NewTimeSeries(nil)},
		Metric:          ProfitFactorMetric,
		NumPermutations: MinPermutations,
	}
	if _, err := d.Run(context.Background()); err == nil {
		t.Fatalf("expected the baseline backtest error to propagate")
	}
}

func TestDriverNotifiesAttachedObserverForBaselineAndPermutations(t *testing.T) {
	collector := NewStatisticsCollector()
	d := &Driver{
		Strategy:       testStrategy(),
		OriginalSeries: series.NewTimeSeries(nil),
		NewBacktester: func(ts *series.TimeSeries) backtest.Backtester {
			return &fakeBacktester{positions: 10, profitFactor: 1.0}
		},
		Synthetic:       &fakeSource{series: series.NewTimeSeries(nil)},
		Metric:          ProfitFactorMetric,
		NumPermutations: MinPermutations,
	}
	d.Attach(collector)
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats, ok := collector.Stats("uuid-1")
	if !ok {
		t.Fatalf("expected the collector to have observed statistics for the strategy")
	}
	if stats.Count != int64(MinPermutations+1) {
		t.Fatalf("observed count = %d, want %d (baseline + permutations)", stats.Count, MinPermutations+1)
	}
}
