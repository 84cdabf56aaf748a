package discovery

import "fmt"

// PerformanceCriteria is the filter a discovered candidate must clear to
// be kept. The constructor validates eagerly, mirroring the original
// factory's constructor exceptions rather than deferring to first use.
type PerformanceCriteria struct {
	minProfitability     float64 // percent, [0,100]
	minTrades            uint32
	maxConsecutiveLosers uint32
	minProfitFactor      float64
}

// NewPerformanceCriteria validates and constructs a PerformanceCriteria.
// It rejects: minProfitability outside [0,100], minTrades == 0, and
// minProfitFactor <= 0.
func NewPerformanceCriteria(minProfitability float64, minTrades uint32, maxConsecutiveLosers uint32, minProfitFactor float64) (*PerformanceCriteria, error) {
	if minProfitability < 0 || minProfitability > 100 {
		return nil, fmt.Errorf("discovery: minProfitability must be in [0,100], got %v", minProfitability)
	}
	if minTrades == 0 {
		return nil, fmt.Errorf("discovery: minTrades must be >= 1")
	}
	if minProfitFactor <= 0 {
		return nil, fmt.Errorf("discovery: minProfitFactor must be > 0, got %v", minProfitFactor)
	}
	return &PerformanceCriteria{
		minProfitability:     minProfitability,
		minTrades:            minTrades,
		maxConsecutiveLosers: maxConsecutiveLosers,
		minProfitFactor:      minProfitFactor,
	}, nil
}

func (c *PerformanceCriteria) MinProfitability() float64     { return c.minProfitability }
func (c *PerformanceCriteria) MinTrades() uint32              { return c.minTrades }
func (c *PerformanceCriteria) MaxConsecutiveLosers() uint32   { return c.maxConsecutiveLosers }
func (c *PerformanceCriteria) MinProfitFactor() float64       { return c.minProfitFactor }

// Meets reports whether observed performance clears every threshold.
func (c *PerformanceCriteria) Meets(closedTrades uint32, profitabilityPct float64, consecutiveLosses uint32, profitFactor float64) bool {
	return closedTrades >= c.minTrades &&
		profitabilityPct >= c.minProfitability &&
		consecutiveLosses <= c.maxConsecutiveLosers &&
		profitFactor >= c.minProfitFactor
}
