// Package ledger defines the remote ledger contract: the cloud-held
// mirror of groups, expenses and settlements, organized as per-group
// collections of documents.
//
// Write acknowledgment: Set and Delete return only after the write has
// been applied and is visible to subsequent reads. A nil error IS the
// acknowledgment; callers never need to sleep before re-reading.
package ledger

import (
	"context"
	"errors"

	"github.com/bestsplit/bestsplit/internal/models"
)

// ErrNotFound is returned by point lookups when no document exists.
var ErrNotFound = errors.New("document not found")

// GroupLedger mirrors group records.
type GroupLedger interface {
	// GetAllGroups returns every group document.
	GetAllGroups(ctx context.Context) ([]*models.Group, error)

	// GetGroup returns one group document by ID.
	GetGroup(ctx context.Context, id int64) (*models.Group, error)

	// SetGroup upserts a group document. Returns after the write is
	// visible to reads.
	SetGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group document and its expense and
	// settlement collections.
	DeleteGroup(ctx context.Context, id int64) error
}

// ExpenseLedger mirrors the per-group expense collections plus the legacy
// flat collection that predates group scoping.
type ExpenseLedger interface {
	// GetAllExpenses returns the group's expense documents ordered by
	// creation time descending.
	GetAllExpenses(ctx context.Context, groupID int64) ([]*models.Expense, error)

	// GetExpense returns one expense document.
	GetExpense(ctx context.Context, groupID, id int64) (*models.Expense, error)

	// SetExpense upserts an expense document into the group-scoped
	// collection. Returns after the write is visible to reads.
	SetExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense document.
	DeleteExpense(ctx context.Context, groupID, id int64) error

	// SubscribeExpenses delivers the group's full expense snapshot on
	// every change, in write order, starting with the current one.
	// Snapshots are delivered synchronously with the write, so callbacks
	// must not call back into the ledger. The returned cancel func
	// detaches the listener.
	SubscribeExpenses(groupID int64, fn func([]*models.Expense)) (cancel func())

	// LegacyExpenses returns the documents for groupID still living in
	// the legacy flat collection.
	LegacyExpenses(ctx context.Context, groupID int64) ([]*models.Expense, error)
}

// SettlementLedger mirrors the per-group settlement collections.
type SettlementLedger interface {
	// GetAllSettlements returns the group's settlement documents.
	GetAllSettlements(ctx context.Context, groupID int64) ([]*models.Settlement, error)

	// GetSettlement returns one settlement document.
	GetSettlement(ctx context.Context, groupID, id int64) (*models.Settlement, error)

	// SetSettlement upserts a settlement document. Returns after the
	// write is visible to reads.
	SetSettlement(ctx context.Context, settlement *models.Settlement) error

	// DeleteSettlement removes a settlement document.
	DeleteSettlement(ctx context.Context, groupID, id int64) error

	// SubscribeSettlements delivers the group's full settlement snapshot
	// on every change, with the same delivery guarantees as
	// SubscribeExpenses.
	SubscribeSettlements(groupID int64, fn func([]*models.Settlement)) (cancel func())
}

// Ledger is the full remote surface the synchronizer and services need.
type Ledger interface {
	GroupLedger
	ExpenseLedger
	SettlementLedger
}
