package backtest

import (
	"context"
	"errors"
	"sync"

	"github.com/chidi150c/palvalidator/ast"
	"github.com/chidi150c/palvalidator/series"
)

// trade records one closed position.
type trade struct {
	entryIdx, exitIdx int
	pnlPercent        float64
}

// positionHistory is the minimal PositionHistory implementation backing
// SimBacktester.
type positionHistory struct {
	trades []trade
}

func (h *positionHistory) NumPositions() uint32 { return uint32(len(h.trades)) }

// Returns exposes the raw per-trade percentage returns, satisfying
// mcpt.ReturnsProvider for the PositionShufflePermutation variant.
func (h *positionHistory) Returns() []float64 {
	out := make([]float64, len(h.trades))
	for i, tr := range h.trades {
		out[i] = tr.pnlPercent
	}
	return out
}

// SimBacktester is a minimal in-memory reference implementation of
// Backtester, adapted from the original coinbase bot's PaperBroker
// (mutex-guarded mutable state, simple simulated fills) and its
// walk-forward backtest runner. It evaluates a single bound strategy's
// predicate bar-by-bar over its series, opening a position on the bar
// after a predicate match and
// closing on the first bar whose high/low crosses the pattern's profit
// target or stop loss, processing exits before new entries on the same
// bar.
type SimBacktester struct {
	mu       sync.Mutex
	ts       *series.TimeSeries
	strategy *ast.Strategy
	history  positionHistory
	ran      bool
}

// NewSimBacktester binds a backtester to a series; AddStrategy must be
// called before Backtest.
func NewSimBacktester(ts *series.TimeSeries) *SimBacktester {
	return &SimBacktester{ts: ts}
}

func (b *SimBacktester) AddStrategy(s *ast.Strategy) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s == nil {
		return errors.New("backtest: AddStrategy requires a non-nil strategy")
	}
	b.strategy = s
	return nil
}

// Clone returns a fresh, empty SimBacktester bound to the same series
// value (callers that want a synthetic run pass a SimBacktester built over
// the synthetic series instead; Clone exists to satisfy the interface for
// same-series reuse).
func (b *SimBacktester) Clone() Backtester {
	b.mu.Lock()
	defer b.mu.Unlock()
	return NewSimBacktester(b.ts)
}

// WithSeries returns a fresh SimBacktester over a different series, for
// the common case where a clone is meant to run against a synthetic
// series rather than the original.
func (b *SimBacktester) WithSeries(ts *series.TimeSeries) *SimBacktester {
	return NewSimBacktester(ts)
}

func (b *SimBacktester) Backtest(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.strategy == nil {
		return errors.New("backtest: no strategy bound")
	}
	b.history = positionHistory{}

	pat := b.strategy.Pattern
	n := b.ts.Len()
	inPosition := false
	var entryIdx int
	var entryPrice float64

	targetPct := pat.ProfitTarget.Percent.Float64() / 100.0
	stopPct := pat.StopLoss.Percent.Float64() / 100.0
	isLong := pat.IsLong()

	for t := 0; t < n; t++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		bar, ok := b.ts.BarAt(t)
		if !ok {
			continue
		}

		// Exit-before-entry: process any pending exit for this bar first.
		if inPosition {
			var targetPrice, stopPrice float64
			if isLong {
				targetPrice = entryPrice * (1 + targetPct)
				stopPrice = entryPrice * (1 - stopPct)
				if bar.High >= targetPrice {
					b.history.trades = append(b.history.trades, trade{entryIdx, t, targetPct})
					inPosition = false
				} else if bar.Low <= stopPrice {
					b.history.trades = append(b.history.trades, trade{entryIdx, t, -stopPct})
					inPosition = false
				}
			} else {
				targetPrice = entryPrice * (1 - targetPct)
				stopPrice = entryPrice * (1 + stopPct)
				if bar.Low <= targetPrice {
					b.history.trades = append(b.history.trades, trade{entryIdx, t, targetPct})
					inPosition = false
				} else if bar.High >= stopPrice {
					b.history.trades = append(b.history.trades, trade{entryIdx, t, -stopPct})
					inPosition = false
				}
			}
		}

		if !inPosition && t+1 < n {
			matched, ok := EvalPredicate(pat.Predicate, b.ts, t)
			if ok && matched {
				next, ok := b.ts.BarAt(t + 1)
				if ok {
					inPosition = true
					entryIdx = t + 1
					entryPrice = next.Open
					t++ // the entry bar itself cannot also exit in the same iteration
				}
			}
		}
	}

	b.ran = true
	return nil
}

func (b *SimBacktester) ClosedPositionHistory() PositionHistory {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.history
	return &h
}

func (b *SimBacktester) Profitability() (profitFactor float64, winRatePercent float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.history.trades) == 0 {
		return 0, 0
	}
	var grossProfit, grossLoss float64
	var wins int
	for _, tr := range b.history.trades {
		if tr.pnlPercent >= 0 {
			grossProfit += tr.pnlPercent
			wins++
		} else {
			grossLoss += -tr.pnlPercent
		}
	}
	winRate := 100 * float64(wins) / float64(len(b.history.trades))
	if grossLoss == 0 {
		if grossProfit == 0 {
			return 0, winRate
		}
		return grossProfit / 1e-9, winRate
	}
	return grossProfit / grossLoss, winRate
}

func (b *SimBacktester) NumConsecutiveLosses() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var cur, worst uint32
	for _, tr := range b.history.trades {
		if tr.pnlPercent < 0 {
			cur++
			if cur > worst {
				worst = cur
			}
		} else {
			cur = 0
		}
	}
	return worst
}

func (b *SimBacktester) GetNumTrades() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint32(len(b.history.trades))
}

func (b *SimBacktester) GetNumBarsInTrades() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total uint32
	for _, tr := range b.history.trades {
		total += uint32(tr.exitIdx - tr.entryIdx)
	}
	return total
}
