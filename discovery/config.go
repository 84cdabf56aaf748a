package discovery

import (
	"fmt"
	"time"

	"github.com/chidi150c/palvalidator/ast"
	"github.com/chidi150c/palvalidator/series"
)

// Security binds a symbol to the time series discovery reads bars from.
type Security struct {
	Symbol string
	Series *series.TimeSeries
}

// SearchConfiguration is the in-process, programmatically constructed
// configuration surface discovery consumes. Loading these values from a
// file or flag set is explicitly out of scope for this module.
type SearchConfiguration struct {
	Security              *Security
	TimeFrame             time.Duration
	Mode                  SearchMode
	SearchDelayPatterns   bool
	MinDelayBars          uint32
	MaxDelayBars          uint32
	ProfitTarget          ast.Decimal
	StopLoss              ast.Decimal
	Criteria              *PerformanceCriteria
	BacktestStart         time.Time
	BacktestEnd           time.Time
	// Side selects which entry direction discovery emits. The original
	// source always builds LongMarketEntryOnOpen patterns; side selection
	// for unprofitable/ambiguous markets is left an open question by the
	// design, so this defaults to long (the zero value) and callers opt
	// into short discovery explicitly.
	Side ast.EntrySide
}

// DefaultDelayRange is used when SearchDelayPatterns is enabled but the
// caller left Min/MaxDelayBars at zero.
var DefaultDelayRange = LengthRange{Min: 1, Max: 5}

// Validate checks the configuration-level invariants from the error
// taxonomy's ConfigurationError kind: non-null security, non-inverted date
// range, strictly positive profit target and stop loss.
func (c *SearchConfiguration) Validate() error {
	if c.Security == nil || c.Security.Series == nil {
		return fmt.Errorf("discovery: ConfigurationError: security must be non-nil")
	}
	if c.Criteria == nil {
		return fmt.Errorf("discovery: ConfigurationError: performance criteria must be non-nil")
	}
	if !c.BacktestEnd.After(c.BacktestStart) {
		return fmt.Errorf("discovery: ConfigurationError: backtest end must be after start")
	}
	if !c.ProfitTarget.IsPositive() {
		return fmt.Errorf("discovery: ConfigurationError: profit target must be positive")
	}
	if !c.StopLoss.IsPositive() {
		return fmt.Errorf("discovery: ConfigurationError: stop loss must be positive")
	}
	if c.SearchDelayPatterns && c.MaxDelayBars < c.MinDelayBars {
		return fmt.Errorf("discovery: ConfigurationError: max delay bars must be >= min delay bars")
	}
	return nil
}

// DelayRange returns the effective [min,max] delay range, substituting the
// default (1,5) when delay search is enabled but bounds were left unset.
func (c *SearchConfiguration) DelayRange() LengthRange {
	if !c.SearchDelayPatterns {
		return LengthRange{0, 0}
	}
	if c.MinDelayBars == 0 && c.MaxDelayBars == 0 {
		return DefaultDelayRange
	}
	return LengthRange{int(c.MinDelayBars), int(c.MaxDelayBars)}
}
