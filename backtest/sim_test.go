package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/chidi150c/palvalidator/ast"
	"github.com/chidi150c/palvalidator/series"
)

func alwaysLongStrategy(t *testing.T, targetPct, stopPct string) *ast.Strategy {
	t.Helper()
	rm := ast.NewManager()
	target, err := rm.GetDecimal(targetPct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stop, err := rm.GetDecimal(stopPct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// High(0) > Low(0) holds on every bar of a series with nonzero swing,
	// giving every bar a matching entry signal.
	pred := rm.CreateGreaterThan(rm.GetPriceBarRef(ast.ComponentHigh, 0), rm.GetPriceBarRef(ast.ComponentLow, 0))
	desc := &ast.PatternDescription{Filename: "AlwaysLong"}
	pat, err := rm.CreatePattern(desc, pred, rm.GetLongEntryOnOpen(), rm.GetLongProfitTarget(target), rm.GetLongStopLoss(stop), ast.VolatilityNone, ast.PortfolioNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return &ast.Strategy{Name: "AlwaysLong", Pattern: pat, InstanceUUID: "test", PatternHash: pat.Hash()}
}

func seriesOfBars(n int, basePrice, swing float64) *series.TimeSeries {
	day := func(d int) time.Time { return time.Date(2023, 1, d+1, 0, 0, 0, 0, time.UTC) }
	var bars []series.Bar
	price := basePrice
	for i := 0; i < n; i++ {
		high := price + swing
		low := price - swing
		bars = append(bars, series.Bar{Time: day(i), Open: price, High: high, Low: low, Close: price, Volume: 1})
	}
	return series.NewTimeSeries(bars)
}

func TestSimBacktesterRequiresBoundStrategy(t *testing.T) {
	ts := seriesOfBars(5, 100, 2)
	bt := NewSimBacktester(ts)
	if err := bt.Backtest(context.Background()); err == nil {
		t.Fatalf("expected an error when no strategy is bound")
	}
}

func TestSimBacktesterAddStrategyRejectsNil(t *testing.T) {
	ts := seriesOfBars(5, 100, 2)
	bt := NewSimBacktester(ts)
	if err := bt.AddStrategy(nil); err == nil {
		t.Fatalf("expected an error for a nil strategy")
	}
}

func TestSimBacktesterProducesTradesOnMatchingSeries(t *testing.T) {
	ts := seriesOfBars(20, 100, 10)
	strat := alwaysLongStrategy(t, "5.0", "5.0")
	bt := NewSimBacktester(ts)
	if err := bt.AddStrategy(strat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := bt.Backtest(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bt.ClosedPositionHistory().NumPositions() == 0 {
		t.Fatalf("expected at least one closed trade on a series whose bars always swing past target/stop")
	}
}

func TestSimBacktesterProfitabilityOnNoTrades(t *testing.T) {
	ts := seriesOfBars(3, 100, 0)
	// Low(0) > High(0) can never hold, so this strategy never enters.
	rm := ast.NewManager()
	target, _ := rm.GetDecimal("1.0")
	stop, _ := rm.GetDecimal("1.0")
	pred := rm.CreateGreaterThan(rm.GetPriceBarRef(ast.ComponentLow, 0), rm.GetPriceBarRef(ast.ComponentHigh, 0))
	desc := &ast.PatternDescription{Filename: "NeverLong"}
	pat, err := rm.CreatePattern(desc, pred, rm.GetLongEntryOnOpen(), rm.GetLongProfitTarget(target), rm.GetLongStopLoss(stop), ast.VolatilityNone, ast.PortfolioNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	strat := &ast.Strategy{Name: "NeverLong", Pattern: pat, InstanceUUID: "test", PatternHash: pat.Hash()}

	bt := NewSimBacktester(ts)
	if err := bt.AddStrategy(strat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := bt.Backtest(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pf, winRate := bt.Profitability()
	if pf != 0 || winRate != 0 {
		t.Fatalf("expected zero profit factor and win rate with no trades, got pf=%v winRate=%v", pf, winRate)
	}
	if bt.NumConsecutiveLosses() != 0 {
		t.Fatalf("expected zero consecutive losses with no trades")
	}
}

func TestSimBacktesterCloneBuildsFreshBacktester(t *testing.T) {
	ts := seriesOfBars(5, 100, 2)
	strat := alwaysLongStrategy(t, "5.0", "5.0")
	bt := NewSimBacktester(ts)
	if err := bt.AddStrategy(strat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := bt.Backtest(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clone := bt.Clone()
	if clone.ClosedPositionHistory().NumPositions() != 0 {
		t.Fatalf("expected a freshly cloned backtester to have no trade history")
	}
}

func TestSimBacktesterRespectsContextCancellation(t *testing.T) {
	ts := seriesOfBars(5, 100, 2)
	strat := alwaysLongStrategy(t, "5.0", "5.0")
	bt := NewSimBacktester(ts)
	if err := bt.AddStrategy(strat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := bt.Backtest(ctx); err == nil {
		t.Fatalf("expected Backtest to fail fast on an already-cancelled context")
	}
}
