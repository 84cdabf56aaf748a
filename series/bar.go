// Package series holds the OHLCV bar storage the pattern engine addresses
// by offset, plus the derived bar-reference components (Roc1, IBS1-3,
// Meander, VChartLow/High) that the AST's PriceBarRef variants read.
package series

import (
	"fmt"
	"time"

	"github.com/chidi150c/palvalidator/ast"
)

// Component re-exports the AST's price-component enum so callers of
// TimeSeries.Value don't need to import ast separately.
type Component = ast.PriceComponent

const (
	Open       = ast.ComponentOpen
	High       = ast.ComponentHigh
	Low        = ast.ComponentLow
	Close      = ast.ComponentClose
	Volume     = ast.ComponentVolume
	Roc1       = ast.ComponentRoc1
	IBS1       = ast.ComponentIBS1
	IBS2       = ast.ComponentIBS2
	IBS3       = ast.ComponentIBS3
	Meander    = ast.ComponentMeander
	VChartLow  = ast.ComponentVChartLow
	VChartHigh = ast.ComponentVChartHigh
)

// Bar is one OHLCV observation. Adapted from the original coinbase bot's
// Candle type, renamed for a domain where bars are addressed by offset
// rather than streamed.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// TimeSeries is an ordered, oldest-first sequence of Bars with offset
// addressing relative to an anchor index.
type TimeSeries struct {
	bars []Bar
}

// NewTimeSeries wraps a chronologically ascending slice of bars.
func NewTimeSeries(bars []Bar) *TimeSeries {
	cp := make([]Bar, len(bars))
	copy(cp, bars)
	return &TimeSeries{bars: cp}
}

// Len returns the number of bars.
func (s *TimeSeries) Len() int { return len(s.bars) }

// BarAt returns the bar at absolute index i.
func (s *TimeSeries) BarAt(i int) (Bar, bool) {
	if i < 0 || i >= len(s.bars) {
		return Bar{}, false
	}
	return s.bars[i], true
}

// At returns the bar `offset` positions before anchor index t: index t-offset.
// The second return is false if that index is out of range (insufficient
// history).
func (s *TimeSeries) At(t int, offset uint32) (Bar, bool) {
	idx := t - int(offset)
	return s.BarAt(idx)
}

// Value reads one component of the bar `offset` before anchor t, resolving
// derived components (Roc1, IBS1-3, Meander, VChartLow/High) from the
// surrounding bars they need. ok is false if any required bar is missing.
func (s *TimeSeries) Value(component Component, t int, offset uint32) (float64, bool) {
	idx := t - int(offset)
	switch component {
	case Open:
		b, ok := s.BarAt(idx)
		return b.Open, ok
	case High:
		b, ok := s.BarAt(idx)
		return b.High, ok
	case Low:
		b, ok := s.BarAt(idx)
		return b.Low, ok
	case Close:
		b, ok := s.BarAt(idx)
		return b.Close, ok
	case Volume:
		b, ok := s.BarAt(idx)
		return b.Volume, ok
	case Roc1:
		cur, ok1 := s.BarAt(idx)
		prev, ok2 := s.BarAt(idx - 1)
		if !ok1 || !ok2 || prev.Close == 0 {
			return 0, false
		}
		return (cur.Close - prev.Close) / prev.Close, true
	case IBS1, IBS2, IBS3:
		lag := ibsLag(component)
		b, ok := s.BarAt(idx - lag)
		if !ok {
			return 0, false
		}
		rng := b.High - b.Low
		if rng == 0 {
			return 0.5, true
		}
		return (b.Close - b.Low) / rng, true
	case Meander:
		b, ok := s.BarAt(idx)
		if !ok {
			return 0, false
		}
		hi, lo, okRange := s.highLow(idx-5, idx)
		if !okRange || hi == lo {
			return 0, false
		}
		return (b.Close - lo) / (hi - lo), true
	case VChartLow:
		lo, ok := s.rollingLow(idx-6, idx)
		if !ok {
			return 0, false
		}
		return lo, true
	case VChartHigh:
		hi, ok := s.rollingHigh(idx-6, idx)
		if !ok {
			return 0, false
		}
		return hi, true
	default:
		return 0, false
	}
}

func ibsLag(c Component) int {
	switch c {
	case IBS1:
		return 0
	case IBS2:
		return 1
	case IBS3:
		return 2
	default:
		return 0
	}
}

func (s *TimeSeries) highLow(lo, hi int) (float64, float64, bool) {
	if lo < 0 || hi >= len(s.bars) || lo > hi {
		return 0, 0, false
	}
	h, l := s.bars[lo].High, s.bars[lo].Low
	for i := lo + 1; i <= hi; i++ {
		if s.bars[i].High > h {
			h = s.bars[i].High
		}
		if s.bars[i].Low < l {
			l = s.bars[i].Low
		}
	}
	return h, l, true
}

func (s *TimeSeries) rollingLow(lo, hi int) (float64, bool) {
	_, l, ok := s.highLow(lo, hi)
	return l, ok
}

func (s *TimeSeries) rollingHigh(lo, hi int) (float64, bool) {
	h, _, ok := s.highLow(lo, hi)
	return h, ok
}

// Clone returns a deep copy whose bar slice is independently mutable.
func (s *TimeSeries) Clone() *TimeSeries {
	return NewTimeSeries(s.bars)
}

// Bars returns the underlying slice; callers must not mutate it.
func (s *TimeSeries) Bars() []Bar { return s.bars }

func (b Bar) String() string {
	return fmt.Sprintf("%s O=%.4f H=%.4f L=%.4f C=%.4f V=%.0f", b.Time.Format("2006-01-02"), b.Open, b.High, b.Low, b.Close, b.Volume)
}
