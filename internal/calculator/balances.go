package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bestsplit/bestsplit/internal/models"
	"github.com/bestsplit/bestsplit/internal/money"
)

// Matrix is the pairwise net-debt view of a group.
// Matrix[a][b] is the amount a owes b; after the netting pass at most one
// of Matrix[a][b], Matrix[b][a] is non-zero for any pair. A Matrix is a
// pure function of the inputs that produced it and must not be mutated;
// recomputation always builds a fresh one.
type Matrix map[string]map[string]decimal.Decimal

// Owes returns the amount from owes to, zero when no entry exists.
func (m Matrix) Owes(from, to string) decimal.Decimal {
	if row, ok := m[from]; ok {
		if v, ok := row[to]; ok {
			return v
		}
	}
	return decimal.Zero
}

// ComputeBalances derives the net-debt matrix for a group from a snapshot
// of its expenses and settlements.
//
// Expenses with a blank or non-member payer or an empty share map are
// skipped, as are share entries for non-members, non-positive shares and
// the payer's own share. Settlements with a blank or non-member party or a
// non-positive amount are skipped. A final netting pass collapses mutual
// debts so each pair owes in at most one direction.
func ComputeBalances(members []string, expenses []*models.Expense, settlements []*models.Settlement) (Matrix, error) {
	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		if m == "" {
			return nil, fmt.Errorf("blank member identity")
		}
		memberSet[m] = true
	}

	matrix := make(Matrix, len(members))
	for _, m := range members {
		row := make(map[string]decimal.Decimal, len(members)-1)
		for _, other := range members {
			if m != other {
				row[other] = decimal.Zero
			}
		}
		matrix[m] = row
	}

	for _, e := range expenses {
		payer := e.PaidBy
		if payer == "" || !memberSet[payer] || len(e.PaidFor) == 0 {
			continue
		}
		for memberID, amount := range e.PaidFor {
			if memberID == "" || !memberSet[memberID] || amount <= 0 {
				continue
			}
			if memberID == payer {
				continue
			}
			share := money.FromFloat(amount)
			matrix[memberID][payer] = matrix[memberID][payer].Add(share)
			matrix[payer][memberID] = matrix[payer][memberID].Sub(share)
		}
	}

	for _, s := range settlements {
		if s.FromUserID == "" || s.ToUserID == "" ||
			!memberSet[s.FromUserID] || !memberSet[s.ToUserID] || s.Amount <= 0 {
			continue
		}
		amount := money.FromFloat(s.Amount)
		matrix[s.FromUserID][s.ToUserID] = matrix[s.FromUserID][s.ToUserID].Sub(amount)
		matrix[s.ToUserID][s.FromUserID] = matrix[s.ToUserID][s.FromUserID].Add(amount)
	}

	netMutualDebts(members, matrix)
	return matrix, nil
}

// netMutualDebts collapses each pair's opposing entries into a single
// one-directional amount. Afterwards every entry is non-negative and at
// most one direction of a pair carries a debt; the reciprocal entry of
// any positive debt is zero.
func netMutualDebts(members []string, matrix Matrix) {
	for i, a := range members {
		for _, b := range members[i+1:] {
			owed := matrix[a][b]
			owedBack := matrix[b][a]
			if owed.IsPositive() && owedBack.IsPositive() {
				if owed.Cmp(owedBack) > 0 {
					matrix[a][b] = owed.Sub(owedBack)
					matrix[b][a] = decimal.Zero
				} else {
					matrix[b][a] = owedBack.Sub(owed)
					matrix[a][b] = decimal.Zero
				}
			}
			// Expense accumulation drives the payer's side negative;
			// the debt itself lives on the reciprocal entry.
			if matrix[a][b].IsNegative() {
				matrix[a][b] = decimal.Zero
			}
			if matrix[b][a].IsNegative() {
				matrix[b][a] = decimal.Zero
			}
		}
	}
}
