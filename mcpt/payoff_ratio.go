package mcpt

import (
	"context"
	"sort"

	"github.com/chidi150c/palvalidator/ast"
	"github.com/chidi150c/palvalidator/backtest"
	"github.com/chidi150c/palvalidator/series"
)

// PayoffRatioEstimator accumulates the median winning and median losing
// trade return across synthetic runs and reports their ratio, rather than
// a permutation p-value. Result is zero if either set of trades is empty
// across every synthetic run.
type PayoffRatioEstimator struct {
	Strategy       *ast.Strategy
	OriginalSeries *series.TimeSeries
	NewBacktester  func(ts *series.TimeSeries) backtest.Backtester
	Synthetic      Source
	NumPermutations int
	Tick           float64
}

// Run executes NumPermutations synthetic backtests and returns
// median(winning returns) / |median(losing returns)|.
func (e *PayoffRatioEstimator) Run(ctx context.Context) (float64, error) {
	var winners, losers []float64

	for i := 0; i < e.NumPermutations; i++ {
		synthetic, err := e.Synthetic.CreateSyntheticSeries(e.OriginalSeries, e.Tick)
		if err != nil {
			return 0, err
		}
		bt := e.NewBacktester(synthetic)
		cloned := &ast.Strategy{
			Name:         e.Strategy.Name,
			Pattern:      e.Strategy.Pattern,
			Portfolio:    e.Strategy.Portfolio,
			InstanceUUID: e.Strategy.InstanceUUID,
			PatternHash:  e.Strategy.PatternHash,
		}
		if err := bt.AddStrategy(cloned); err != nil {
			return 0, err
		}
		if err := bt.Backtest(ctx); err != nil {
			return 0, err
		}
		rp, ok := bt.ClosedPositionHistory().(ReturnsProvider)
		if !ok {
			continue
		}
		for _, r := range rp.Returns() {
			if r >= 0 {
				winners = append(winners, r)
			} else {
				losers = append(losers, r)
			}
		}
	}

	if len(winners) == 0 || len(losers) == 0 {
		return 0, nil
	}
	medWin := median(winners)
	medLoss := median(losers)
	if medLoss == 0 {
		return 0, nil
	}
	return medWin / absf(medLoss), nil
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
