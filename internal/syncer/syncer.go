// Package syncer reconciles the local record store with the remote
// ledger.
//
// Reconciliation is pull-based and idempotent: every valid remote record
// is upserted into the store (last write wins by ID), so running a sync
// twice, or concurrently from two goroutines, converges on the same store
// content. Records that reference a group the store does not know yet are
// skipped with a warning and heal on a later pass, after the group pull
// has landed.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bestsplit/bestsplit/internal/ledger"
	"github.com/bestsplit/bestsplit/internal/models"
	"github.com/bestsplit/bestsplit/internal/storage"
)

// DefaultRetryDelay is the fixed wait before the single retry of a failed
// remote write.
const DefaultRetryDelay = 1 * time.Second

// Synchronizer reconciles the record store with the remote ledger and
// owns the per-group live listeners. Safe for concurrent use.
type Synchronizer struct {
	store      storage.Store
	remote     ledger.Ledger
	retryDelay time.Duration

	mu        sync.Mutex
	listeners map[int64][]func() // group -> cancel funcs for its listeners
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithRetryDelay overrides the fixed delay before the single write retry.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Synchronizer) { s.retryDelay = d }
}

// New creates a Synchronizer over the given store and ledger.
func New(store storage.Store, remote ledger.Ledger, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:      store,
		remote:     remote,
		retryDelay: DefaultRetryDelay,
		listeners:  make(map[int64][]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PullGroups fetches every remote group and upserts it locally. Groups
// come first in a full sync so that expense and settlement records find
// their parent.
func (s *Synchronizer) PullGroups(ctx context.Context) error {
	groups, err := s.remote.GetAllGroups(ctx)
	if err != nil {
		return fmt.Errorf("pull groups: %w", err)
	}
	for _, g := range groups {
		if g.ID <= 0 {
			slog.Warn("Skipping remote group with invalid ID", "group_id", g.ID)
			recordsTotal.WithLabelValues("group", outcomeSkippedInvalid).Inc()
			continue
		}
		if err := s.store.UpsertGroup(ctx, g); err != nil {
			slog.Error("Failed to upsert remote group", "group_id", g.ID, "error", err)
			recordsTotal.WithLabelValues("group", outcomeError).Inc()
			continue
		}
		recordsTotal.WithLabelValues("group", outcomeApplied).Inc()
	}
	return nil
}

// PullExpenses fetches the group's remote expenses and upserts every
// valid record into the store. It also checks the legacy flat collection
// and migrates any records found only there into the group-scoped
// collection; the migration is idempotent.
func (s *Synchronizer) PullExpenses(ctx context.Context, groupID int64) error {
	start := time.Now()
	defer func() { syncDuration.WithLabelValues("expenses").Observe(time.Since(start).Seconds()) }()

	scoped, err := s.remote.GetAllExpenses(ctx, groupID)
	if err != nil {
		return fmt.Errorf("pull expenses for group %d: %w", groupID, err)
	}
	s.applyExpenses(ctx, groupID, scoped)

	legacy, err := s.remote.LegacyExpenses(ctx, groupID)
	if err != nil {
		slog.Warn("Failed to read legacy expense collection", "group_id", groupID, "error", err)
		return nil
	}
	if len(legacy) == 0 {
		return nil
	}

	s.applyExpenses(ctx, groupID, legacy)

	scopedIDs := make(map[int64]bool, len(scoped))
	for _, e := range scoped {
		scopedIDs[e.ID] = true
	}
	for _, e := range legacy {
		if e.ID <= 0 || e.GroupID != groupID || scopedIDs[e.ID] {
			continue
		}
		slog.Info("Migrating legacy expense to group collection",
			"expense_id", e.ID, "group_id", groupID)
		s.writeWithRetry(ctx, "migrate_expense", func(ctx context.Context) error {
			return s.remote.SetExpense(ctx, e)
		})
	}
	return nil
}

// PullSettlements fetches the group's remote settlements and upserts
// every valid record into the store.
func (s *Synchronizer) PullSettlements(ctx context.Context, groupID int64) error {
	start := time.Now()
	defer func() { syncDuration.WithLabelValues("settlements").Observe(time.Since(start).Seconds()) }()

	docs, err := s.remote.GetAllSettlements(ctx, groupID)
	if err != nil {
		return fmt.Errorf("pull settlements for group %d: %w", groupID, err)
	}
	s.applySettlements(ctx, groupID, docs)
	return nil
}

// SyncGroup pulls expenses and settlements for one group. Errors from
// either pull abort the remaining work only if the context is done;
// otherwise both sides get their chance.
func (s *Synchronizer) SyncGroup(ctx context.Context, groupID int64) error {
	runID := uuid.NewString()
	slog.Debug("Sync started", "run_id", runID, "group_id", groupID)

	expErr := s.PullExpenses(ctx, groupID)
	if err := ctx.Err(); err != nil {
		return err
	}
	setErr := s.PullSettlements(ctx, groupID)

	switch {
	case expErr != nil:
		return expErr
	case setErr != nil:
		return setErr
	}
	slog.Debug("Sync finished", "run_id", runID, "group_id", groupID)
	return nil
}

// SyncAll pulls groups, then expenses and settlements for every group the
// user belongs to. Used by the background refresh schedule.
func (s *Synchronizer) SyncAll(ctx context.Context, userID string) error {
	if err := s.PullGroups(ctx); err != nil {
		return err
	}
	groups, err := s.store.ListGroupsForMember(ctx, userID)
	if err != nil {
		return fmt.Errorf("list groups for sync: %w", err)
	}
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.SyncGroup(ctx, g.ID); err != nil {
			slog.Warn("Group sync failed", "group_id", g.ID, "error", err)
		}
	}
	return nil
}

// Listen attaches live listeners for the group's expense and settlement
// collections; each incoming snapshot goes through the same upsert path
// as a pull. Listeners are keyed by group ID: attaching again for the
// same group first detaches the old listeners.
func (s *Synchronizer) Listen(groupID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked(groupID)

	cancelExp := s.remote.SubscribeExpenses(groupID, func(snapshot []*models.Expense) {
		s.applyExpenses(context.Background(), groupID, snapshot)
	})
	cancelSet := s.remote.SubscribeSettlements(groupID, func(snapshot []*models.Settlement) {
		s.applySettlements(context.Background(), groupID, snapshot)
	})
	s.listeners[groupID] = []func(){cancelExp, cancelSet}
	slog.Debug("Live sync attached", "group_id", groupID)
}

// StopListening detaches the group's live listeners, if any.
func (s *Synchronizer) StopListening(groupID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked(groupID)
}

// Close detaches every live listener.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for groupID := range s.listeners {
		s.detachLocked(groupID)
	}
}

func (s *Synchronizer) detachLocked(groupID int64) {
	for _, cancel := range s.listeners[groupID] {
		cancel()
	}
	delete(s.listeners, groupID)
}

// PushExpense writes an expense to the remote ledger, retrying once after
// the fixed delay. A second failure is logged and absorbed; the caller's
// operation is never blocked or rolled back by a remote failure.
func (s *Synchronizer) PushExpense(ctx context.Context, expense *models.Expense) {
	s.writeWithRetry(ctx, "push_expense", func(ctx context.Context) error {
		return s.remote.SetExpense(ctx, expense)
	})
}

// PushExpenseDelete removes an expense from the remote ledger with the
// same retry policy as PushExpense.
func (s *Synchronizer) PushExpenseDelete(ctx context.Context, groupID, id int64) {
	s.writeWithRetry(ctx, "delete_expense", func(ctx context.Context) error {
		return s.remote.DeleteExpense(ctx, groupID, id)
	})
}

// PushSettlement writes a settlement to the remote ledger with the same
// retry policy as PushExpense.
func (s *Synchronizer) PushSettlement(ctx context.Context, settlement *models.Settlement) {
	s.writeWithRetry(ctx, "push_settlement", func(ctx context.Context) error {
		return s.remote.SetSettlement(ctx, settlement)
	})
}

// PushGroup writes a group to the remote ledger with the same retry
// policy as PushExpense.
func (s *Synchronizer) PushGroup(ctx context.Context, group *models.Group) {
	s.writeWithRetry(ctx, "push_group", func(ctx context.Context) error {
		return s.remote.SetGroup(ctx, group)
	})
}

// PushGroupDelete removes a group and its collections from the remote
// ledger with the same retry policy as PushExpense.
func (s *Synchronizer) PushGroupDelete(ctx context.Context, groupID int64) {
	s.writeWithRetry(ctx, "delete_group", func(ctx context.Context) error {
		return s.remote.DeleteGroup(ctx, groupID)
	})
}

func (s *Synchronizer) applyExpenses(ctx context.Context, groupID int64, docs []*models.Expense) {
	for _, e := range docs {
		if e.ID <= 0 {
			slog.Warn("Skipping expense with invalid ID", "group_id", groupID)
			recordsTotal.WithLabelValues("expense", outcomeSkippedInvalid).Inc()
			continue
		}
		if e.GroupID != groupID {
			slog.Warn("Skipping expense with mismatched group ID",
				"expense_id", e.ID, "expected_group", groupID, "got_group", e.GroupID)
			recordsTotal.WithLabelValues("expense", outcomeSkippedInvalid).Inc()
			continue
		}
		if err := s.store.UpsertExpense(ctx, e); err != nil {
			if errors.Is(err, storage.ErrMissingParent) {
				slog.Warn("Group not local yet, expense deferred to next sync",
					"expense_id", e.ID, "group_id", e.GroupID)
				recordsTotal.WithLabelValues("expense", outcomeSkippedOrphan).Inc()
				continue
			}
			slog.Error("Failed to upsert expense", "expense_id", e.ID, "error", err)
			recordsTotal.WithLabelValues("expense", outcomeError).Inc()
			continue
		}
		recordsTotal.WithLabelValues("expense", outcomeApplied).Inc()
	}
}

func (s *Synchronizer) applySettlements(ctx context.Context, groupID int64, docs []*models.Settlement) {
	for _, st := range docs {
		if st.ID <= 0 {
			slog.Warn("Skipping settlement with invalid ID", "group_id", groupID)
			recordsTotal.WithLabelValues("settlement", outcomeSkippedInvalid).Inc()
			continue
		}
		if st.GroupID != groupID {
			slog.Warn("Skipping settlement with mismatched group ID",
				"settlement_id", st.ID, "expected_group", groupID, "got_group", st.GroupID)
			recordsTotal.WithLabelValues("settlement", outcomeSkippedInvalid).Inc()
			continue
		}
		if err := s.store.UpsertSettlement(ctx, st); err != nil {
			if errors.Is(err, storage.ErrMissingParent) {
				slog.Warn("Group not local yet, settlement deferred to next sync",
					"settlement_id", st.ID, "group_id", st.GroupID)
				recordsTotal.WithLabelValues("settlement", outcomeSkippedOrphan).Inc()
				continue
			}
			slog.Error("Failed to upsert settlement", "settlement_id", st.ID, "error", err)
			recordsTotal.WithLabelValues("settlement", outcomeError).Inc()
			continue
		}
		recordsTotal.WithLabelValues("settlement", outcomeApplied).Inc()
	}
}

// writeWithRetry runs a remote write, retrying once after the fixed delay
// on failure. The second failure is downgraded to a warning.
func (s *Synchronizer) writeWithRetry(ctx context.Context, op string, write func(context.Context) error) {
	err := write(ctx)
	if err == nil {
		return
	}
	slog.Warn("Remote write failed, retrying once", "op", op, "error", err)
	retriesTotal.WithLabelValues(op).Inc()

	select {
	case <-time.After(s.retryDelay):
	case <-ctx.Done():
		slog.Warn("Remote write abandoned", "op", op, "error", ctx.Err())
		writeFailuresTotal.WithLabelValues(op).Inc()
		return
	}

	if err := write(ctx); err != nil {
		slog.Warn("Remote write failed after retry", "op", op, "error", err)
		writeFailuresTotal.WithLabelValues(op).Inc()
	}
}
