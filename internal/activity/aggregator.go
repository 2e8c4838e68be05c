// Package activity derives a per-user chronological feed of money events
// from the same share semantics as the balance engine.
package activity

import (
	"context"
	"fmt"
	"sort"

	"github.com/bestsplit/bestsplit/internal/storage"
	"github.com/bestsplit/bestsplit/internal/users"
)

// EntryType classifies a feed entry from the viewer's perspective.
type EntryType string

const (
	// TypeExpense means the viewer owes a share of someone else's payment.
	TypeExpense EntryType = "EXPENSE"
	// TypeYourPayment means the viewer paid and others owe them.
	TypeYourPayment EntryType = "YOUR_PAYMENT"
)

// Entry is one item of the activity feed.
type Entry struct {
	ID           string    `json:"id"`
	GroupID      int64     `json:"groupId"`
	GroupName    string    `json:"groupName"`
	Title        string    `json:"title"`
	Amount       float64   `json:"amount"`
	Date         int64     `json:"date"`
	Participants []string  `json:"participants"`
	Type         EntryType `json:"type"`
	PayerName    string    `json:"payerName"`
}

// Aggregator builds activity feeds from the record store.
type Aggregator struct {
	store     storage.Store
	directory users.Directory
}

// New creates an Aggregator resolving names through directory.
func New(store storage.Store, directory users.Directory) *Aggregator {
	return &Aggregator{store: store, directory: directory}
}

// BuildFeed returns the activity feed for currentUser, most recent first.
// The feed is regenerated from scratch on every call; it has no state of
// its own.
//
// For each expense in a group the user belongs to where the user is the
// payer or a share participant: the payer sees what others owe back
// (total minus their own share), a participant sees their own share.
// Entries whose derived amount is not positive are dropped.
func (a *Aggregator) BuildFeed(ctx context.Context, currentUser string) ([]Entry, error) {
	groups, err := a.store.ListGroupsForMember(ctx, currentUser)
	if err != nil {
		return nil, fmt.Errorf("build activity feed: %w", err)
	}

	var entries []Entry
	for _, group := range groups {
		expenses, err := a.store.ListExpensesForGroup(ctx, group.ID)
		if err != nil {
			return nil, fmt.Errorf("build activity feed for group %d: %w", group.ID, err)
		}

		for _, expense := range expenses {
			_, participates := expense.PaidFor[currentUser]
			isPayer := expense.PaidBy == currentUser
			if !isPayer && !participates {
				continue
			}

			entryType := TypeExpense
			amount := expense.PaidFor[currentUser]
			if isPayer {
				entryType = TypeYourPayment
				amount = expense.Amount - expense.PaidFor[currentUser]
			}
			if amount <= 0 {
				continue
			}

			entries = append(entries, Entry{
				ID:           fmt.Sprintf("%d", expense.ID),
				GroupID:      group.ID,
				GroupName:    group.Name,
				Title:        expense.Description,
				Amount:       amount,
				Date:         expense.CreatedAt,
				Participants: a.participantNames(ctx, expense.PaidFor, currentUser),
				Type:         entryType,
				PayerName:    a.displayName(ctx, expense.PaidBy, currentUser),
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })
	return entries, nil
}

func (a *Aggregator) participantNames(ctx context.Context, paidFor map[string]float64, currentUser string) []string {
	ids := make([]string, 0, len(paidFor))
	for id := range paidFor {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, a.displayName(ctx, id, currentUser))
	}
	return names
}

func (a *Aggregator) displayName(ctx context.Context, userID, currentUser string) string {
	if userID == currentUser {
		return "You"
	}
	user, err := a.directory.Lookup(ctx, userID)
	if err != nil {
		return "Unknown"
	}
	return user.Name
}
