package models

// Group represents a set of members who share expenses.
//
// Invariant: CreatedBy is always present in Members. The group owns its
// expenses and settlements; deleting a group cascades to both.
type Group struct {
	// ID is the numeric identifier assigned by the record store.
	ID int64 `json:"id"`

	// Name is the display name of the group (e.g., "Goa Trip").
	Name string `json:"name"`

	// Description is optional free text.
	Description string `json:"description"`

	// CreatedAt is the creation time in epoch milliseconds.
	CreatedAt int64 `json:"createdAt"`

	// CreatedBy is the user ID of the creator.
	CreatedBy string `json:"createdBy"`

	// Members is the set of member user IDs. Order carries no meaning.
	Members []string `json:"members"`
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
