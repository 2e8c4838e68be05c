package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bestsplit/bestsplit/internal/calculator"
	"github.com/bestsplit/bestsplit/internal/models"
)

func TestRefreshComputesMatrix(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := seedGroup(t, env, "alice", "bob", "carol")

	if _, err := env.expenses.AddExpense(ctx, ExpenseInput{
		GroupID: group.ID, Description: "Dinner", Amount: 90, PaidBy: "alice",
		Mode: calculator.SplitEqual,
	}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	result, err := env.balances.Refresh(ctx, group.ID)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	want := decimal.RequireFromString("30")
	if !result.Matrix.Owes("bob", "alice").Equal(want) {
		t.Errorf("bob owes alice %s, want 30", result.Matrix.Owes("bob", "alice"))
	}
	if !result.Matrix.Owes("carol", "alice").Equal(want) {
		t.Errorf("carol owes alice %s, want 30", result.Matrix.Owes("carol", "alice"))
	}

	cached, ok := env.balances.Latest(group.ID)
	if !ok || cached != result {
		t.Error("Latest does not return the refreshed result")
	}
}

func TestRefreshPullsRemoteRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := seedGroup(t, env, "alice", "bob")

	// A record that exists only remotely is pulled in by Refresh.
	if err := env.remote.SetExpense(ctx, &models.Expense{
		ID: 777, GroupID: group.ID, Description: "Remote dinner", Amount: 40,
		PaidBy: "alice", CreatedAt: 100, PaidFor: map[string]float64{"alice": 20, "bob": 20},
	}); err != nil {
		t.Fatalf("SetExpense failed: %v", err)
	}

	result, err := env.balances.Refresh(ctx, group.ID)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if !result.Matrix.Owes("bob", "alice").Equal(decimal.RequireFromString("20")) {
		t.Errorf("bob owes alice %s, want 20", result.Matrix.Owes("bob", "alice"))
	}
}

func TestRefreshAfterSettlement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := seedGroup(t, env, "alice", "bob")

	if _, err := env.expenses.AddExpense(ctx, ExpenseInput{
		GroupID: group.ID, Amount: 40, PaidBy: "alice", Mode: calculator.SplitEqual,
	}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if _, err := env.balances.Refresh(ctx, group.ID); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if err := env.settles.RecordSettlement(ctx, &models.Settlement{
		GroupID: group.ID, FromUserID: "bob", ToUserID: "alice", Amount: 20,
	}); err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}

	// The mutation invalidated the cached result.
	if _, ok := env.balances.Latest(group.ID); ok {
		t.Error("cached result survived a settlement")
	}

	result, err := env.balances.Refresh(ctx, group.ID)
	if err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}
	if !result.Matrix.Owes("bob", "alice").IsZero() {
		t.Errorf("bob owes alice %s, want 0 after settling", result.Matrix.Owes("bob", "alice"))
	}
}

func TestRefreshCancelledContext(t *testing.T) {
	env := newTestEnv(t)
	group := seedGroup(t, env, "alice", "bob")

	if _, err := env.balances.Refresh(context.Background(), group.ID); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	before, ok := env.balances.Latest(group.ID)
	if !ok {
		t.Fatal("no cached result")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := env.balances.Refresh(ctx, group.ID); err == nil {
		t.Fatal("expected a cancellation error")
	}

	// The cached result is untouched by the cancelled refresh.
	after, ok := env.balances.Latest(group.ID)
	if !ok || after != before {
		t.Error("cancelled refresh replaced the cached result")
	}
}

func TestRefreshUnknownGroup(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.balances.Refresh(context.Background(), 999); err == nil {
		t.Error("expected an error for unknown group")
	}
	if _, ok := env.balances.Latest(999); ok {
		t.Error("a failed refresh must not publish a result")
	}
}
