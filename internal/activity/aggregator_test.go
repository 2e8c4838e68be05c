package activity

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/bestsplit/bestsplit/internal/models"
	"github.com/bestsplit/bestsplit/internal/storage/sqlite"
	"github.com/bestsplit/bestsplit/internal/users"
)

func newTestAggregator(t *testing.T) (*Aggregator, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(store, users.NewStoreDirectory(store)), store
}

func seedUser(t *testing.T, store *sqlite.Store, id, name string) {
	t.Helper()
	err := store.CreateUser(context.Background(), &models.User{
		ID: id, Name: name, Email: id + "@example.com", PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
}

func TestBuildFeed(t *testing.T) {
	agg, store := newTestAggregator(t)
	ctx := context.Background()

	seedUser(t, store, "alice", "Alice")
	seedUser(t, store, "bob", "Bob")

	group := &models.Group{Name: "Trip", CreatedBy: "alice", Members: []string{"alice", "bob", "carol"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// alice paid 90 split three ways; bob paid 20 split with alice.
	expenses := []*models.Expense{
		{GroupID: group.ID, Description: "Dinner", Amount: 90, PaidBy: "alice", CreatedAt: 100,
			PaidFor: map[string]float64{"alice": 30, "bob": 30, "carol": 30}},
		{GroupID: group.ID, Description: "Taxi", Amount: 20, PaidBy: "bob", CreatedAt: 200,
			PaidFor: map[string]float64{"alice": 10, "bob": 10}},
	}
	for _, e := range expenses {
		if err := store.UpsertExpense(ctx, e); err != nil {
			t.Fatalf("UpsertExpense failed: %v", err)
		}
	}

	feed, err := agg.BuildFeed(ctx, "alice")
	if err != nil {
		t.Fatalf("BuildFeed failed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("feed has %d entries, want 2", len(feed))
	}

	// Newest first: the taxi ride alice owes bob for.
	taxi := feed[0]
	if taxi.Type != TypeExpense {
		t.Errorf("taxi type = %s, want EXPENSE", taxi.Type)
	}
	if math.Abs(taxi.Amount-10) > 0.01 {
		t.Errorf("taxi amount = %v, want alice's own share of 10", taxi.Amount)
	}
	if taxi.PayerName != "Bob" {
		t.Errorf("taxi payer = %q, want Bob", taxi.PayerName)
	}

	// The dinner alice paid: others owe her the total minus her share.
	dinner := feed[1]
	if dinner.Type != TypeYourPayment {
		t.Errorf("dinner type = %s, want YOUR_PAYMENT", dinner.Type)
	}
	if math.Abs(dinner.Amount-60) > 0.01 {
		t.Errorf("dinner amount = %v, want 60", dinner.Amount)
	}
	if dinner.PayerName != "You" {
		t.Errorf("dinner payer = %q, want You", dinner.PayerName)
	}
	// carol has no user record, so her name does not resolve.
	wantParticipants := []string{"You", "Bob", "Unknown"}
	if len(dinner.Participants) != 3 {
		t.Fatalf("participants = %v", dinner.Participants)
	}
	for i, want := range wantParticipants {
		if dinner.Participants[i] != want {
			t.Errorf("participant[%d] = %q, want %q", i, dinner.Participants[i], want)
		}
	}
}

func TestBuildFeedSkipsUnrelatedExpenses(t *testing.T) {
	agg, store := newTestAggregator(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", CreatedBy: "alice", Members: []string{"alice", "bob", "carol"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// alice is neither payer nor participant.
	err := store.UpsertExpense(ctx, &models.Expense{
		GroupID: group.ID, Description: "Drinks", Amount: 20, PaidBy: "bob", CreatedAt: 100,
		PaidFor: map[string]float64{"bob": 10, "carol": 10},
	})
	if err != nil {
		t.Fatalf("UpsertExpense failed: %v", err)
	}

	feed, err := agg.BuildFeed(ctx, "alice")
	if err != nil {
		t.Fatalf("BuildFeed failed: %v", err)
	}
	if len(feed) != 0 {
		t.Errorf("feed = %+v, want empty", feed)
	}
}

func TestBuildFeedDropsNonPositiveAmounts(t *testing.T) {
	agg, store := newTestAggregator(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", CreatedBy: "alice", Members: []string{"alice"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// alice paid only for herself; nothing is owed back.
	err := store.UpsertExpense(ctx, &models.Expense{
		GroupID: group.ID, Description: "Solo lunch", Amount: 15, PaidBy: "alice", CreatedAt: 100,
		PaidFor: map[string]float64{"alice": 15},
	})
	if err != nil {
		t.Fatalf("UpsertExpense failed: %v", err)
	}

	feed, err := agg.BuildFeed(ctx, "alice")
	if err != nil {
		t.Fatalf("BuildFeed failed: %v", err)
	}
	if len(feed) != 0 {
		t.Errorf("feed = %+v, want empty", feed)
	}
}
