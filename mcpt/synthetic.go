package mcpt

import (
	"fmt"
	"math/rand"

	"github.com/chidi150c/palvalidator/series"
)

// Source is the external SyntheticSeriesSource contract (§6.3): produce a
// permuted OHLC series of the same length, preserving component-wise
// bar validity (H >= max(O,C), L <= min(O,C)), reproducibly given a seed.
type Source interface {
	CreateSyntheticSeries(original *series.TimeSeries, tick float64) (*series.TimeSeries, error)
}

// BarShuffleSource is a reference Source implementation: it extracts each
// bar's shape (open-to-close and wick returns relative to its own open,
// plus the prior-close-to-open gap) and replays those shapes in a random
// order over a single reconstructed price path, so every synthetic bar is
// a real bar's shape transplanted onto a new baseline price. When
// tick > 0, reconstructed prices are rounded to the nearest tick.
type BarShuffleSource struct {
	Rand *rand.Rand
}

// NewBarShuffleSource builds a source seeded for reproducibility.
func NewBarShuffleSource(seed int64) *BarShuffleSource {
	return &BarShuffleSource{Rand: rand.New(rand.NewSource(seed))}
}

type barShape struct {
	gapReturn   float64 // (open - prevClose) / prevClose
	highReturn  float64 // (high - open) / open
	lowReturn   float64 // (low - open) / open
	closeReturn float64 // (close - open) / open
	volume      float64
}

func (s *BarShuffleSource) CreateSyntheticSeries(original *series.TimeSeries, tick float64) (*series.TimeSeries, error) {
	bars := original.Bars()
	n := len(bars)
	if n == 0 {
		return nil, fmt.Errorf("mcpt: cannot synthesize from an empty series")
	}

	shapes := make([]barShape, n)
	prevClose := bars[0].Open
	for i, b := range bars {
		shapes[i] = barShape{
			gapReturn:   ratio(b.Open, prevClose) - 1,
			highReturn:  ratio(b.High, b.Open) - 1,
			lowReturn:   ratio(b.Low, b.Open) - 1,
			closeReturn: ratio(b.Close, b.Open) - 1,
			volume:      b.Volume,
		}
		prevClose = b.Close
	}

	perm := s.Rand.Perm(n)
	out := make([]series.Bar, n)
	price := bars[0].Open
	for i, idx := range perm {
		sh := shapes[idx]
		open := price * (1 + sh.gapReturn)
		high := open * (1 + sh.highReturn)
		low := open * (1 + sh.lowReturn)
		closePx := open * (1 + sh.closeReturn)
		if high < open {
			high = open
		}
		if high < closePx {
			high = closePx
		}
		if low > open {
			low = open
		}
		if low > closePx {
			low = closePx
		}
		if tick > 0 {
			open = roundToTick(open, tick)
			high = roundToTick(high, tick)
			low = roundToTick(low, tick)
			closePx = roundToTick(closePx, tick)
		}
		out[i] = series.Bar{Time: bars[i].Time, Open: open, High: high, Low: low, Close: closePx, Volume: sh.volume}
		price = closePx
	}
	return series.NewTimeSeries(out), nil
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 1
	}
	return a / b
}

func roundToTick(price, tick float64) float64 {
	return tick * float64(int64(price/tick+0.5))
}
