// Package storage defines the record store contract for BestSplit.
//
// The record store is the single shared mutable resource of the system:
// the synchronizer and the CRUD services write to it, everything else
// reads snapshots from it. Upserts are last-write-wins by record ID, which
// is what makes repeated and concurrent synchronization safe.
package storage

import (
	"context"
	"errors"

	"github.com/bestsplit/bestsplit/internal/models"
)

// ErrNotFound is returned by point lookups when no record has the given ID.
var ErrNotFound = errors.New("record not found")

// ErrMissingParent is returned by upserts whose referenced group does not
// exist locally yet. The synchronizer treats it as a transient ordering
// condition and retries the record on the next pass.
var ErrMissingParent = errors.New("parent group not found")

// Store is the record store consumed by the core components.
type Store interface {
	// CreateGroup persists a new group, assigning ID and CreatedAt.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID.
	GetGroup(ctx context.Context, id int64) (*models.Group, error)

	// UpdateGroup replaces a group's metadata and member set.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// UpsertGroup inserts or replaces a group by its remote-assigned ID
	// (which must be positive). Used by the synchronizer; last write wins.
	UpsertGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group and cascades to its expenses and
	// settlements.
	DeleteGroup(ctx context.Context, id int64) error

	// ListGroups returns all groups, newest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// ListGroupsForMember returns the groups userID belongs to, newest
	// first.
	ListGroupsForMember(ctx context.Context, userID string) ([]*models.Group, error)

	// UpsertExpense inserts or replaces an expense. An ID of 0 means
	// "assign one"; the assigned ID is written back to the record. An
	// existing ID overwrites the stored record wholesale.
	UpsertExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID.
	GetExpense(ctx context.Context, id int64) (*models.Expense, error)

	// DeleteExpense removes an expense by ID.
	DeleteExpense(ctx context.Context, id int64) error

	// ListExpensesForGroup returns the group's expenses ordered by
	// creation time descending.
	ListExpensesForGroup(ctx context.Context, groupID int64) ([]*models.Expense, error)

	// UpsertSettlement inserts or replaces a settlement, with the same ID
	// semantics as UpsertExpense.
	UpsertSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, id int64) (*models.Settlement, error)

	// ListSettlementsForGroup returns the group's settlements ordered by
	// creation time descending.
	ListSettlementsForGroup(ctx context.Context, groupID int64) ([]*models.Settlement, error)

	// CreateUser persists a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Watch returns a channel that receives a signal whenever records of
	// the given group change, plus a cancel func that releases the
	// subscription. Signals are coalesced; a slow receiver sees at least
	// one signal for any burst of changes.
	Watch(groupID int64) (<-chan struct{}, func())

	// Close releases the store's resources.
	Close() error
}
