package mcpt

import "github.com/chidi150c/palvalidator/backtest"

// Metric computes a scalar test statistic from a completed backtest. The
// spec treats the choice of metric (cumulative return, log profit factor,
// max-trade profit factor, ...) as a strategy-level parameter rather than
// mandating one.
type Metric func(bt backtest.Backtester) float64

// ProfitFactorMetric uses the backtester's profit factor directly.
func ProfitFactorMetric(bt backtest.Backtester) float64 {
	pf, _ := bt.Profitability()
	return pf
}

// WinRateMetric uses the backtester's win rate percentage.
func WinRateMetric(bt backtest.Backtester) float64 {
	_, winRate := bt.Profitability()
	return winRate
}
