package discovery

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/chidi150c/palvalidator/ast"
	"github.com/chidi150c/palvalidator/backtest"
	"github.com/chidi150c/palvalidator/delay"
	"github.com/chidi150c/palvalidator/executor"
	"github.com/chidi150c/palvalidator/metrics"
	"github.com/chidi150c/palvalidator/patternsystem"
)

// BacktesterFactory builds a fresh Backtester bound to a candidate
// strategy's series; supplied by the caller since the concrete bar-by-bar
// event loop is an external collaborator.
type BacktesterFactory func() backtest.Backtester

// Engine is the ExhaustiveDiscoveryEngine: for each anchor bar, it
// generates candidate patterns over the search mode's length range,
// backtests each, filters by performance, and optionally rewrites
// survivors with delays.
type Engine struct {
	RM            *ast.Manager
	Config        *SearchConfiguration
	NewBacktester BacktesterFactory
	Executor      executor.ParallelExecutor
}

// NewEngine validates the configuration and builds an Engine.
func NewEngine(rm *ast.Manager, cfg *SearchConfiguration, newBacktester BacktesterFactory, ex executor.ParallelExecutor) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if newBacktester == nil {
		return nil, fmt.Errorf("discovery: NewBacktester factory is required")
	}
	if ex == nil {
		ex = executor.NewInline()
	}
	return &Engine{RM: rm, Config: cfg, NewBacktester: newBacktester, Executor: ex}, nil
}

// anchors returns the valid anchor indices: from the Lmax-th valid
// timestamp onward within [BacktestStart, BacktestEnd].
func (e *Engine) anchors() []int {
	ts := e.Config.Security.Series
	lengths := e.Config.Mode.LengthRange()
	var out []int
	for t := 0; t < ts.Len(); t++ {
		bar, ok := ts.BarAt(t)
		if !ok {
			continue
		}
		if bar.Time.Before(e.Config.BacktestStart) || bar.Time.After(e.Config.BacktestEnd) {
			continue
		}
		if t < lengths.Max-1 {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Run executes discovery across every anchor and returns the aggregated
// PatternSystem.
func (e *Engine) Run(ctx context.Context) (*patternsystem.PatternSystem, error) {
	ps := patternsystem.New()
	anchorList := e.anchors()

	err := executor.ParallelFor(len(anchorList), e.Executor, func(i int) error {
		metrics.IncDiscoveryAnchors()
		return e.runAnchor(ctx, anchorList[i], ps)
	})
	if err != nil {
		return nil, err
	}
	return ps, nil
}

func (e *Engine) runAnchor(ctx context.Context, anchor int, ps *patternsystem.PatternSystem) error {
	lengths := e.Config.Mode.LengthRange()
	ts := e.Config.Security.Series

	for L := lengths.Min; L <= lengths.Max; L++ {
		pred, ok := Enumerate(e.RM, ts, e.Config.Mode, anchor, L)
		if !ok {
			continue // InsufficientHistory or <2 comparable values: abandon this L
		}

		pat, err := e.buildAndFilter(ctx, pred, L, 0)
		if err != nil {
			return err
		}
		if pat == nil {
			continue
		}
		ps.AddPattern(pat)

		if e.Config.SearchDelayPatterns {
			if err := e.delaySweep(ctx, pat, L, ps); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) delaySweep(ctx context.Context, basePattern *ast.Pattern, baseLength int, ps *patternsystem.PatternSystem) error {
	dr := e.Config.DelayRange()
	baseLen := int(basePattern.MaxBarsBack) + 1
	for k := dr.Min; k <= dr.Max; k++ {
		if k == 0 {
			continue
		}
		shifter := delay.NewShifter(e.RM, uint32(k))
		shiftedPred := shifter.Shift(basePattern.Predicate)

		pat, err := e.buildAndFilter(ctx, shiftedPred, baseLen, uint32(k))
		if err != nil {
			return err
		}
		if pat != nil {
			ps.AddPattern(pat)
		}
	}
	return nil
}

// buildAndFilter constructs a placeholder pattern, backtests it, and
// returns the final pattern (with observed description) if it clears the
// performance filter, or nil if it doesn't.
func (e *Engine) buildAndFilter(ctx context.Context, pred ast.Predicate, length int, delayBars uint32) (*ast.Pattern, error) {
	symbol := e.Config.Security.Symbol
	filename := delay.Filename(symbol, length, delayBars)

	entry := e.RM.GetLongEntryOnOpen()
	if e.Config.Side == ast.EntryShort {
		entry = e.RM.GetShortEntryOnOpen()
	}
	var target *ast.ProfitTarget
	var stop *ast.StopLoss
	if e.Config.Side == ast.EntryShort {
		target = e.RM.GetShortProfitTarget(e.Config.ProfitTarget)
		stop = e.RM.GetShortStopLoss(e.Config.StopLoss)
	} else {
		target = e.RM.GetLongProfitTarget(e.Config.ProfitTarget)
		stop = e.RM.GetLongStopLoss(e.Config.StopLoss)
	}

	desc := &ast.PatternDescription{Filename: filename}
	pat, err := e.RM.CreatePattern(desc, pred, entry, target, stop, ast.VolatilityNone, ast.PortfolioNone)
	if err != nil {
		return nil, err
	}

	strategy := &ast.Strategy{
		Name:         filename,
		Pattern:      pat,
		Portfolio:    pat.Portfolio,
		InstanceUUID: uuid.NewString(),
		PatternHash:  pat.Hash(),
	}

	bt := e.NewBacktester()
	if err := bt.AddStrategy(strategy); err != nil {
		return nil, err
	}
	if err := bt.Backtest(ctx); err != nil {
		return nil, err
	}

	numPositions := bt.ClosedPositionHistory().NumPositions()
	profitFactor, winRate := bt.Profitability()
	consecutiveLosses := bt.NumConsecutiveLosses()

	if !e.Config.Criteria.Meets(numPositions, winRate, consecutiveLosses, profitFactor) {
		return nil, nil
	}

	observed := &ast.PatternDescription{
		Filename:          filename,
		PercentLong:       e.RM.GetDecimalFromInt(0),
		PercentShort:      e.RM.GetDecimalFromInt(0),
		NumTrades:         numPositions,
		ConsecutiveLosses: consecutiveLosses,
	}
	final, err := e.RM.CreateFinalPattern(pat, observed)
	if err != nil {
		return nil, err
	}
	if final.IsShort() {
		metrics.IncPatternsDiscovered("short")
	} else {
		metrics.IncPatternsDiscovered("long")
	}
	return final, nil
}
