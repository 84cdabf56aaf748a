package ast

import "fmt"

// TemplateCondition describes one (component, offset) pair in a hand
// written pattern template, consumed by CreatePatternFromTemplate.
type TemplateCondition struct {
	Component PriceComponent
	Offset    uint32
}

// CreatePatternFromTemplate builds a left-associative AndExpr chain of
// strict greater-than comparisons between consecutive conditions, mirroring
// the discovery engine's enumeration but driven by caller-supplied order
// instead of a sort. Returns an error if fewer than two conditions are
// given.
func (m *Manager) CreatePatternFromTemplate(conditions []TemplateCondition) (Predicate, error) {
	if len(conditions) < 2 {
		return nil, fmt.Errorf("ast: pattern template requires at least two conditions, got %d", len(conditions))
	}
	refs := make([]*PriceBarRef, len(conditions))
	for i, c := range conditions {
		refs[i] = m.GetPriceBarRef(c.Component, c.Offset)
	}
	var pred Predicate = m.CreateGreaterThan(refs[0], refs[1])
	for i := 1; i < len(refs)-1; i++ {
		pred = m.CreateAnd(pred, m.CreateGreaterThan(refs[i], refs[i+1]))
	}
	return pred, nil
}

// CreateLongPattern builds a long-side pattern from a template, zero
// placeholder description, and the given target/stop percentages. Mirrors
// the original factory's createLongPalPattern: the description is a
// placeholder until a backtest observes real performance (see
// CreateFinalPattern).
func (m *Manager) CreateLongPattern(name string, conditions []TemplateCondition, targetPercent, stopPercent Decimal) (*Pattern, error) {
	return m.createPattern(name, "_Long", conditions, m.GetLongEntryOnOpen(), m.GetLongProfitTarget(targetPercent), m.GetLongStopLoss(stopPercent))
}

// CreateShortPattern mirrors CreateLongPattern for the short side.
func (m *Manager) CreateShortPattern(name string, conditions []TemplateCondition, targetPercent, stopPercent Decimal) (*Pattern, error) {
	return m.createPattern(name, "_Short", conditions, m.GetShortEntryOnOpen(), m.GetShortProfitTarget(targetPercent), m.GetShortStopLoss(stopPercent))
}

func (m *Manager) createPattern(name, suffix string, conditions []TemplateCondition, entry *Entry, target *ProfitTarget, stop *StopLoss) (*Pattern, error) {
	pred, err := m.CreatePatternFromTemplate(conditions)
	if err != nil {
		return nil, err
	}
	desc := &PatternDescription{Filename: name + suffix}
	return m.CreatePattern(desc, pred, entry, target, stop, VolatilityNone, PortfolioNone)
}

// CreateFinalPattern replaces pat's description with one carrying observed
// backtest performance, rebuilding the pattern (and its hash) through the
// same predicate/entry/target/stop nodes.
func (m *Manager) CreateFinalPattern(pat *Pattern, observed *PatternDescription) (*Pattern, error) {
	return m.CreatePattern(observed, pat.Predicate, pat.Entry, pat.ProfitTarget, pat.StopLoss, pat.Volatility, pat.Portfolio)
}
