// Package backtest defines the Backtester contract core consumes (§6.2 of
// the design) and a minimal in-memory reference implementation used to
// exercise discovery and Monte-Carlo permutation testing without a real
// bar-by-bar event loop and order book, which remain an external
// collaborator's responsibility.
package backtest

import (
	"context"

	"github.com/chidi150c/palvalidator/ast"
)

// PositionHistory reports on the closed trades a backtest produced.
type PositionHistory interface {
	NumPositions() uint32
}

// Backtester is the minimal external contract core depends on. A real
// implementation owns its own bar-by-bar event loop and order book; core
// never reaches into those details.
type Backtester interface {
	// AddStrategy binds a strategy to this backtester instance.
	AddStrategy(s *ast.Strategy) error
	// Clone produces a fresh, empty backtester bound to the same date
	// range (and, for synthetic runs, a different underlying series).
	Clone() Backtester
	// Backtest runs the bar loop to completion.
	Backtest(ctx context.Context) error
	// ClosedPositionHistory reports on completed trades.
	ClosedPositionHistory() PositionHistory
	// Profitability returns (profit factor, win rate percent).
	Profitability() (profitFactor float64, winRatePercent float64)
	// NumConsecutiveLosses returns the longest observed losing streak.
	NumConsecutiveLosses() uint32
	// GetNumTrades returns the total closed-trade count.
	GetNumTrades() uint32
	// GetNumBarsInTrades returns the total bars spent in a position,
	// summed across closed trades; used by the statistics collector.
	GetNumBarsInTrades() uint32
}
