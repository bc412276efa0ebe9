// Package money centralizes the fixed-point arithmetic and rounding policy
// used for every monetary value in the system. All persisted and compared
// amounts are shopspring decimals; float64 never touches money.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// CentPlaces is the scale of every final monetary amount.
	CentPlaces = 2

	// RatePlaces is the scale kept for intermediate monthly-rate values.
	RatePlaces = 8
)

var (
	Zero    = decimal.Zero
	Hundred = decimal.NewFromInt(100)

	monthsPerYear = decimal.NewFromInt(12)
)

// Cents rounds a final allocation to the cent, half-up. Intermediate values
// (rates, rate products) must not pass through here; only amounts that are
// about to be assigned to a bucket or persisted.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

// MonthlyRate converts an annual percentage rate (e.g. 18 for 18%) to a
// periodic monthly rate, keeping eight fractional digits so repeated
// amortization products do not drift.
func MonthlyRate(annualPercent decimal.Decimal) decimal.Decimal {
	return annualPercent.Div(Hundred).Div(monthsPerYear).Round(RatePlaces)
}

// FromDollars builds an amount from a float input at the API boundary.
// The value is snapped to cents immediately so nothing downstream ever sees
// sub-cent precision.
func FromDollars(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(CentPlaces)
}

// Parse builds an amount from its string form, snapped to cents.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return d.Round(CentPlaces), nil
}

// Format renders an amount with exactly two fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(CentPlaces)
}

// IsPositive reports whether the amount is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(decimal.Zero)
}

// Min returns the smaller of two amounts.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
