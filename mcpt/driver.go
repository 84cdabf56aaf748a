// Package mcpt implements the Monte-Carlo permutation driver: baseline
// and permuted backtests, p-value computation, and the Subject/Observer
// wiring used to stream statistics to a collector without retaining the
// raw permutation sequence.
package mcpt

import (
	"context"
	"fmt"

	"github.com/chidi150c/palvalidator/ast"
	"github.com/chidi150c/palvalidator/backtest"
	"github.com/chidi150c/palvalidator/metrics"
	"github.com/chidi150c/palvalidator/series"
)

// InsufficientTradesSentinel is the no-power p-value MCPT returns when the
// baseline backtest produces fewer than 4 closed trades. This is not an
// error: the taxonomy treats it as a swallowed InsufficientTrades
// condition.
const InsufficientTradesSentinel = 1.0

// MinPermutations is the smallest permutation count the driver accepts for
// the default synthetic-series algorithm.
const MinPermutations = 10

// Driver runs the Monte-Carlo permutation test for one strategy bound to
// an original series and a caller-supplied Backtester factory.
type Driver struct {
	Subject

	Strategy        *ast.Strategy
	OriginalSeries  *series.TimeSeries
	NewBacktester   func(ts *series.TimeSeries) backtest.Backtester
	Synthetic       Source
	Metric          Metric
	NumPermutations int
	Tick            float64
}

// Run executes the baseline backtest, then NumPermutations synthetic
// backtests, returning the permutation p-value.
func (d *Driver) Run(ctx context.Context) (float64, error) {
	if d.NumPermutations < MinPermutations {
		return 0, fmt.Errorf("mcpt: NumPermutations must be >= %d, got %d", MinPermutations, d.NumPermutations)
	}

	bt0 := d.NewBacktester(d.OriginalSeries)
	if err := bt0.AddStrategy(d.Strategy); err != nil {
		return 0, err
	}
	if err := bt0.Backtest(ctx); err != nil {
		return 0, err
	}
	if bt0.ClosedPositionHistory().NumPositions() < 4 {
		return InsufficientTradesSentinel, nil
	}

	m0 := d.Metric(bt0)
	d.notify(d.Strategy.InstanceUUID, m0, true)

	c := 0
	for i := 0; i < d.NumPermutations; i++ {
		mi, err := d.runOnePermutation(ctx)
		if err != nil {
			return 0, err
		}
		d.notify(d.Strategy.InstanceUUID, mi, false)
		if mi >= m0 {
			c++
		}
	}

	p := float64(c+1) / float64(d.NumPermutations+1)
	metrics.SetMCPTPValue(p)
	return p, nil
}

func (d *Driver) runOnePermutation(ctx context.Context) (float64, error) {
	for {
		synthetic, err := d.Synthetic.CreateSyntheticSeries(d.OriginalSeries, d.Tick)
		if err != nil {
			return 0, err
		}
		metrics.IncPermutationsRun()
		bt := d.NewBacktester(synthetic)
		cloned := &ast.Strategy{
			Name:         d.Strategy.Name,
			Pattern:      d.Strategy.Pattern,
			Portfolio:    d.Strategy.Portfolio,
			InstanceUUID: d.Strategy.InstanceUUID,
			PatternHash:  d.Strategy.PatternHash,
		}
		if err := bt.AddStrategy(cloned); err != nil {
			return 0, err
		}
		if err := bt.Backtest(ctx); err != nil {
			return 0, err
		}
		if bt.ClosedPositionHistory().NumPositions() < 2 {
			continue // redraw: synthetic run produced too few trades
		}
		return d.Metric(bt), nil
	}
}
