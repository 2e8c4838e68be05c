package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bestsplit/bestsplit/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name         string
		members      []string
		expenses     []*models.Expense
		settlements  []*models.Settlement
		wantErr      bool
		validateFunc func(t *testing.T, m Matrix)
	}{
		{
			name:    "empty inputs give all-zero matrix",
			members: []string{"alice", "bob"},
			validateFunc: func(t *testing.T, m Matrix) {
				if !m.Owes("alice", "bob").IsZero() || !m.Owes("bob", "alice").IsZero() {
					t.Errorf("expected zero matrix, got %v", m)
				}
			},
		},
		{
			name:    "single expense split three ways",
			members: []string{"alice", "bob", "carol"},
			expenses: []*models.Expense{
				{
					ID: 1, GroupID: 1, PaidBy: "alice", Amount: 90,
					PaidFor: map[string]float64{"alice": 30, "bob": 30, "carol": 30},
				},
			},
			validateFunc: func(t *testing.T, m Matrix) {
				if !m.Owes("bob", "alice").Equal(dec("30")) {
					t.Errorf("bob owes alice %s, want 30", m.Owes("bob", "alice"))
				}
				if !m.Owes("carol", "alice").Equal(dec("30")) {
					t.Errorf("carol owes alice %s, want 30", m.Owes("carol", "alice"))
				}
				if !m.Owes("alice", "bob").IsZero() || !m.Owes("alice", "carol").IsZero() {
					t.Error("payer should owe nothing after netting")
				}
				if !m.Owes("bob", "carol").IsZero() || !m.Owes("carol", "bob").IsZero() {
					t.Error("non-payer pair should owe nothing")
				}
			},
		},
		{
			name:    "mutual debts net to a single direction",
			members: []string{"alice", "bob"},
			expenses: []*models.Expense{
				{ID: 1, GroupID: 1, PaidBy: "alice", Amount: 40, PaidFor: map[string]float64{"alice": 20, "bob": 20}},
				{ID: 2, GroupID: 1, PaidBy: "bob", Amount: 10, PaidFor: map[string]float64{"alice": 5, "bob": 5}},
			},
			validateFunc: func(t *testing.T, m Matrix) {
				if !m.Owes("bob", "alice").Equal(dec("15")) {
					t.Errorf("bob owes alice %s, want 15", m.Owes("bob", "alice"))
				}
				if !m.Owes("alice", "bob").IsZero() {
					t.Errorf("alice owes bob %s, want 0", m.Owes("alice", "bob"))
				}
			},
		},
		{
			name:    "settlement cancels a debt exactly",
			members: []string{"alice", "bob"},
			expenses: []*models.Expense{
				{ID: 1, GroupID: 1, PaidBy: "alice", Amount: 40, PaidFor: map[string]float64{"alice": 20, "bob": 20}},
			},
			settlements: []*models.Settlement{
				{ID: 1, GroupID: 1, FromUserID: "bob", ToUserID: "alice", Amount: 20},
			},
			validateFunc: func(t *testing.T, m Matrix) {
				if !m.Owes("bob", "alice").IsZero() || !m.Owes("alice", "bob").IsZero() {
					t.Errorf("expected settled pair, got bob->alice=%s alice->bob=%s",
						m.Owes("bob", "alice"), m.Owes("alice", "bob"))
				}
			},
		},
		{
			name:    "overpaid settlement flips the direction",
			members: []string{"alice", "bob"},
			expenses: []*models.Expense{
				{ID: 1, GroupID: 1, PaidBy: "alice", Amount: 40, PaidFor: map[string]float64{"alice": 20, "bob": 20}},
			},
			settlements: []*models.Settlement{
				{ID: 1, GroupID: 1, FromUserID: "bob", ToUserID: "alice", Amount: 30},
			},
			validateFunc: func(t *testing.T, m Matrix) {
				if !m.Owes("alice", "bob").Equal(dec("10")) {
					t.Errorf("alice owes bob %s, want 10", m.Owes("alice", "bob"))
				}
				if !m.Owes("bob", "alice").IsZero() {
					t.Errorf("bob owes alice %s, want 0", m.Owes("bob", "alice"))
				}
			},
		},
		{
			name:    "payer's own share never creates a debt",
			members: []string{"alice", "bob"},
			expenses: []*models.Expense{
				{ID: 1, GroupID: 1, PaidBy: "alice", Amount: 20, PaidFor: map[string]float64{"alice": 20}},
			},
			validateFunc: func(t *testing.T, m Matrix) {
				if !m.Owes("alice", "bob").IsZero() || !m.Owes("bob", "alice").IsZero() {
					t.Errorf("self-payment should leave the matrix zero, got %v", m)
				}
			},
		},
		{
			name:    "non-member payer and shares are skipped",
			members: []string{"alice", "bob"},
			expenses: []*models.Expense{
				{ID: 1, GroupID: 1, PaidBy: "mallory", Amount: 50, PaidFor: map[string]float64{"alice": 25, "bob": 25}},
				{ID: 2, GroupID: 1, PaidBy: "alice", Amount: 30, PaidFor: map[string]float64{"bob": 15, "mallory": 15}},
			},
			validateFunc: func(t *testing.T, m Matrix) {
				if !m.Owes("bob", "alice").Equal(dec("15")) {
					t.Errorf("bob owes alice %s, want 15", m.Owes("bob", "alice"))
				}
			},
		},
		{
			name:    "non-positive shares and settlements are skipped",
			members: []string{"alice", "bob"},
			expenses: []*models.Expense{
				{ID: 1, GroupID: 1, PaidBy: "alice", Amount: 10, PaidFor: map[string]float64{"bob": -10}},
			},
			settlements: []*models.Settlement{
				{ID: 1, GroupID: 1, FromUserID: "bob", ToUserID: "alice", Amount: 0},
			},
			validateFunc: func(t *testing.T, m Matrix) {
				if !m.Owes("bob", "alice").IsZero() {
					t.Errorf("bob owes alice %s, want 0", m.Owes("bob", "alice"))
				}
			},
		},
		{
			name:    "blank member identity errors",
			members: []string{"alice", ""},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ComputeBalances(tt.members, tt.expenses, tt.settlements)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputeBalances failed: %v", err)
			}

			// Every pair owes in at most one direction and never a
			// negative amount.
			for i, a := range tt.members {
				for _, b := range tt.members[i+1:] {
					ab, ba := m.Owes(a, b), m.Owes(b, a)
					if ab.IsNegative() || ba.IsNegative() {
						t.Errorf("negative entry for pair (%s, %s): %s / %s", a, b, ab, ba)
					}
					if ab.IsPositive() && ba.IsPositive() {
						t.Errorf("both directions positive for pair (%s, %s): %s / %s", a, b, ab, ba)
					}
				}
			}

			if tt.validateFunc != nil {
				tt.validateFunc(t, m)
			}
		})
	}
}

func TestConservation(t *testing.T) {
	// The sum everyone owes the payer equals the total of the shares
	// carried by others.
	members := []string{"alice", "bob", "carol", "dave"}
	expenses := []*models.Expense{
		{ID: 1, GroupID: 1, PaidBy: "alice", Amount: 100,
			PaidFor: map[string]float64{"alice": 25, "bob": 25, "carol": 25, "dave": 25}},
		{ID: 2, GroupID: 1, PaidBy: "bob", Amount: 60,
			PaidFor: map[string]float64{"bob": 20, "carol": 20, "dave": 20}},
	}

	m, err := ComputeBalances(members, expenses, nil)
	if err != nil {
		t.Fatalf("ComputeBalances failed: %v", err)
	}

	owedAlice := decimal.Zero
	for _, other := range members {
		owedAlice = owedAlice.Add(m.Owes(other, "alice"))
	}
	if !owedAlice.Equal(dec("75")) {
		t.Errorf("total owed to alice = %s, want 75", owedAlice)
	}
}
