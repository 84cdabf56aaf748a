package correction

import (
	"testing"

	"github.com/chidi150c/palvalidator/ast"
)

// buildLongPattern and buildShortPattern give family-partitioning tests a
// real *ast.Pattern whose IsShort() reports the side they need, without
// depending on any particular predicate shape.
func buildLongPattern(t *testing.T) (*ast.Pattern, error) {
	t.Helper()
	m := ast.NewManager()
	targetPct, _ := m.GetDecimal("2.0")
	stopPct, _ := m.GetDecimal("1.0")
	pred := m.CreateGreaterThan(m.GetPriceOpen(0), m.GetPriceClose(0))
	desc := &ast.PatternDescription{Filename: "long-helper"}
	return m.CreatePattern(desc, pred, m.GetLongEntryOnOpen(), m.GetLongProfitTarget(targetPct), m.GetLongStopLoss(stopPct), ast.VolatilityNone, ast.PortfolioNone)
}

func buildShortPattern(t *testing.T) (*ast.Pattern, error) {
	t.Helper()
	m := ast.NewManager()
	targetPct, _ := m.GetDecimal("2.0")
	stopPct, _ := m.GetDecimal("1.0")
	pred := m.CreateGreaterThan(m.GetPriceOpen(0), m.GetPriceClose(0))
	desc := &ast.PatternDescription{Filename: "short-helper"}
	return m.CreatePattern(desc, pred, m.GetShortEntryOnOpen(), m.GetShortProfitTarget(targetPct), m.GetShortStopLoss(stopPct), ast.VolatilityNone, ast.PortfolioNone)
}
