// Package calculator implements the pure computations at the heart of
// BestSplit: turning an expense total into per-member shares, and turning
// a group's expenses and settlements into a net-debt matrix.
package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bestsplit/bestsplit/internal/money"
)

// SplitMode selects how an expense total is divided among members.
type SplitMode int

const (
	// SplitEqual divides the total into identical shares.
	SplitEqual SplitMode = iota
	// SplitCustom takes each member's share from raw user input.
	SplitCustom
)

// ComputeShares returns the owed share for every member.
//
// In SplitEqual mode every member gets total / len(members); no remainder
// redistribution is attempted, the residue stays far below the acceptance
// tolerance. In SplitCustom mode each member's share comes from customInput,
// defaulting to zero for missing or unparseable entries; every member
// appears in the result either way.
func ComputeShares(members []string, total decimal.Decimal, mode SplitMode, customInput map[string]string) (map[string]decimal.Decimal, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("must have at least one member")
	}
	if total.IsNegative() {
		return nil, fmt.Errorf("total cannot be negative")
	}

	shares := make(map[string]decimal.Decimal, len(members))
	switch mode {
	case SplitEqual:
		share := total.Div(decimal.NewFromInt(int64(len(members))))
		for _, m := range members {
			shares[m] = share
		}
	case SplitCustom:
		for _, m := range members {
			shares[m] = money.Parse(customInput[m])
		}
	default:
		return nil, fmt.Errorf("unknown split mode: %d", mode)
	}
	return shares, nil
}

// SharesMatchTotal reports whether the share sum is close enough to the
// total to accept the expense. Callers reject the operation when false.
func SharesMatchTotal(shares map[string]decimal.Decimal, total decimal.Decimal) bool {
	return money.Close(money.Sum(shares), total)
}
