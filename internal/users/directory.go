// Package users resolves member identities to display information.
package users

import (
	"context"

	"github.com/bestsplit/bestsplit/internal/models"
	"github.com/bestsplit/bestsplit/internal/storage"
)

// Directory resolves a user ID to its user record.
type Directory interface {
	Lookup(ctx context.Context, userID string) (*models.User, error)
}

// StoreDirectory resolves users from the record store.
type StoreDirectory struct {
	store storage.Store
}

// NewStoreDirectory creates a Directory backed by the record store.
func NewStoreDirectory(store storage.Store) *StoreDirectory {
	return &StoreDirectory{store: store}
}

// Lookup fetches the user record for userID.
func (d *StoreDirectory) Lookup(ctx context.Context, userID string) (*models.User, error) {
	return d.store.GetUser(ctx, userID)
}
