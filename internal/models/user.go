package models

// User represents a registered identity. Member strings on Group, Expense
// and Settlement are User IDs.
type User struct {
	// ID is the unique user identifier (UUID format).
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Email is the unique login email.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the password. Never serialized.
	PasswordHash string `json:"-"`

	// CreatedAt is the account creation time in epoch milliseconds.
	CreatedAt int64 `json:"createdAt"`
}
