package mcpt

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/chidi150c/palvalidator/ast"
	"github.com/chidi150c/palvalidator/backtest"
)

// MinPositionShufflePermutations is the minimum permutation count the
// original MCPT sign-shuffle variant requires.
const MinPositionShufflePermutations = 100

// ReturnsProvider is an optional capability a PositionHistory may
// implement to expose its raw per-trade percentage returns. It is not
// part of the core Backtester contract (§6.2 names only aggregate
// statistics); PositionShuffleDriver type-asserts for it and fails
// clearly if the caller's backtester doesn't support it.
type ReturnsProvider interface {
	Returns() []float64
}

// PositionShuffleDriver implements the original MCPT variant: rather than
// resampling the series, it shuffles the sign of each closed trade's
// return and recomputes an aggregate candidate statistic, counting how
// often the shuffled total meets or exceeds the real one.
type PositionShuffleDriver struct {
	Subject

	Strategy        *ast.Strategy
	Backtester      backtest.Backtester
	NumPermutations int
	Rand            *rand.Rand
}

// Run executes the baseline backtest once, then shuffles trade-return
// signs NumPermutations times.
func (d *PositionShuffleDriver) Run(ctx context.Context) (float64, error) {
	if d.NumPermutations < MinPositionShufflePermutations {
		return 0, fmt.Errorf("mcpt: PositionShufflePermutation requires NumPermutations >= %d, got %d", MinPositionShufflePermutations, d.NumPermutations)
	}
	if err := d.Backtester.AddStrategy(d.Strategy); err != nil {
		return 0, err
	}
	if err := d.Backtester.Backtest(ctx); err != nil {
		return 0, err
	}
	if d.Backtester.ClosedPositionHistory().NumPositions() < 4 {
		return InsufficientTradesSentinel, nil
	}

	rp, ok := d.Backtester.ClosedPositionHistory().(ReturnsProvider)
	if !ok {
		return 0, fmt.Errorf("mcpt: PositionShufflePermutation requires a PositionHistory implementing ReturnsProvider")
	}
	returns := rp.Returns()

	candReturn := sumReturns(returns)
	d.notify(d.Strategy.InstanceUUID, candReturn, true)

	c := 0
	for i := 0; i < d.NumPermutations; i++ {
		trialReturn := 0.0
		for _, r := range returns {
			sign := 1.0
			if d.Rand.Intn(2) == 0 {
				sign = -1.0
			}
			trialReturn += sign * absf(r)
		}
		d.notify(d.Strategy.InstanceUUID, trialReturn, false)
		if trialReturn >= candReturn {
			c++
		}
	}

	return float64(c+1) / float64(d.NumPermutations+1), nil
}

func sumReturns(returns []float64) float64 {
	total := 0.0
	for _, r := range returns {
		total += r
	}
	return total
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
