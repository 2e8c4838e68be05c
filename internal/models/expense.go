package models

// Expense represents a shared expense within a group.
//
// PaidFor maps a member user ID to the share of Amount that member owes.
// The key set should be a subset of the group's members and the shares
// should sum to Amount; both are validated at creation time but tolerated
// if remote data drifts (the balance engine skips invalid entries).
type Expense struct {
	// ID is the numeric identifier assigned by the record store.
	ID int64 `json:"id"`

	// GroupID is the owning group. Deleting the group deletes the expense.
	GroupID int64 `json:"groupId"`

	// Description is the human-readable label (e.g., "Dinner").
	Description string `json:"description"`

	// Amount is the total expense amount. Non-negative.
	Amount float64 `json:"amount"`

	// PaidBy is the user ID of the member who paid.
	PaidBy string `json:"paidBy"`

	// PaidFor maps member user ID to that member's owed share.
	PaidFor map[string]float64 `json:"paidFor"`

	// CreatedAt is the creation time in epoch milliseconds.
	CreatedAt int64 `json:"createdAt"`
}
