package models

// Settlement represents a real-world payment between two group members.
// It reduces FromUserID's recorded debt to ToUserID. Settlements are
// immutable once recorded.
type Settlement struct {
	// ID is the numeric identifier assigned by the record store.
	ID int64 `json:"id"`

	// GroupID is the owning group.
	GroupID int64 `json:"groupId"`

	// FromUserID is the member who paid (debtor settling up).
	FromUserID string `json:"fromUserId"`

	// ToUserID is the member who received payment.
	ToUserID string `json:"toUserId"`

	// Amount is the payment amount. Positive.
	Amount float64 `json:"amount"`

	// Description is an optional note.
	Description string `json:"description"`

	// CreatedAt is the creation time in epoch milliseconds.
	CreatedAt int64 `json:"createdAt"`
}
