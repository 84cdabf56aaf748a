// Package ast implements the interned, hash-consed pattern abstract syntax
// tree: bar references, predicates, entries, stops, targets, and the
// patterns built from them. Every node is owned exclusively by a
// Manager and shared by structural identity.
package ast

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Decimal wraps shopspring/decimal with the fixed precision this module
// requires for stop-loss/profit-target percentages (at least 7 fractional
// digits) and for canonical-string interning keys. Comparisons are always
// fixed-point; floats never leak into hashing or equality.
type Decimal struct {
	d decimal.Decimal
}

// DecimalPrecision is the fixed number of fractional digits used for the
// canonical string key that backs interning and hashing.
const DecimalPrecision = 7

// NewDecimalFromString parses s as a decimal, returning an error if it is
// not a valid numeric literal.
func NewDecimalFromString(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("ast: invalid decimal %q: %w", s, err)
	}
	return Decimal{d: d}, nil
}

// NewDecimalFromInt builds a Decimal from an integer.
func NewDecimalFromInt(i int64) Decimal {
	return Decimal{d: decimal.NewFromInt(i)}
}

// NewDecimalFromFloat builds a Decimal from a float64. Used only at the
// boundary where an external backtester reports a floating-point metric;
// internal arithmetic and comparisons stay fixed-point.
func NewDecimalFromFloat(f float64) Decimal {
	return Decimal{d: decimal.NewFromFloat(f)}
}

// CanonicalString returns the fixed-precision string used as the interning
// key, so that values which compare equal also intern equal regardless of
// how they were originally formatted.
func (d Decimal) CanonicalString() string {
	return d.d.StringFixed(DecimalPrecision)
}

func (d Decimal) String() string { return d.CanonicalString() }

// Cmp compares two decimals as fixed-point values: -1, 0, or 1.
func (d Decimal) Cmp(o Decimal) int { return d.d.Cmp(o.d) }

// LessThan reports whether d < o.
func (d Decimal) LessThan(o Decimal) bool { return d.Cmp(o) < 0 }

// GreaterThan reports whether d > o.
func (d Decimal) GreaterThan(o Decimal) bool { return d.Cmp(o) > 0 }

// Equal reports whether d == o as fixed-point values.
func (d Decimal) Equal(o Decimal) bool { return d.Cmp(o) == 0 }

// IsPositive reports whether d > 0.
func (d Decimal) IsPositive() bool { return d.d.Sign() > 0 }

// Div divides d by o, returning a Decimal rounded to DecimalPrecision.
func (d Decimal) Div(o Decimal) Decimal {
	return Decimal{d: d.d.DivRound(o.d, DecimalPrecision)}
}

// Float64 returns the best float64 approximation; used only for reporting.
func (d Decimal) Float64() float64 {
	f, _ := d.d.Float64()
	return f
}
