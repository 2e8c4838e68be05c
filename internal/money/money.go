// Package money provides decimal arithmetic helpers for amounts.
//
// Amounts cross the wire as float64 (the ledger document shape) but all
// calculator and balance arithmetic happens on decimal values, so repeated
// addition and netting never accumulate binary floating-point error. The
// 0.01 closeness tolerance exists only where user input is validated
// against an entered total.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Tolerance bounds the absolute difference at which two amounts are
// considered equal when validating user-entered splits. Differences of
// exactly one cent are outside the bound.
var Tolerance = decimal.RequireFromString("0.01")

// FromFloat converts a wire amount to a decimal.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Close reports whether a and b differ by strictly less than Tolerance.
func Close(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().Cmp(Tolerance) < 0
}

// Parse converts raw user input to a decimal amount. Blank or unparseable
// input yields zero, matching how custom split fields default.
func Parse(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Sum adds the values of a share map.
func Sum(shares map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range shares {
		total = total.Add(v)
	}
	return total
}
