package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bestsplit/bestsplit/internal/calculator"
	"github.com/bestsplit/bestsplit/internal/storage"
	"github.com/bestsplit/bestsplit/internal/syncer"
)

// BalanceResult is a successfully computed balance matrix with its
// provenance. Callers must treat the matrix as read-only; refreshing
// produces a new result.
type BalanceResult struct {
	GroupID    int64
	Members    []string
	Matrix     calculator.Matrix
	ComputedAt time.Time
}

// BalanceService orchestrates balance recomputation: sync, snapshot read,
// compute. It keeps the last computed matrix per group and invalidates it
// on every relevant mutation; computation failures are explicit errors,
// never a silently empty matrix.
type BalanceService struct {
	store storage.Store
	sync  *syncer.Synchronizer

	mu     sync.Mutex
	latest map[int64]*BalanceResult
}

// NewBalanceService creates a BalanceService.
func NewBalanceService(store storage.Store, sync *syncer.Synchronizer) *BalanceService {
	return &BalanceService{
		store:  store,
		sync:   sync,
		latest: make(map[int64]*BalanceResult),
	}
}

// Refresh recomputes the group's balance matrix from scratch: it syncs
// the group, reads a store snapshot and runs the balance engine.
//
// Cancellation is checked between each step; a cancelled refresh returns
// ctx.Err() and leaves the cached result untouched. A sync failure is
// logged and the matrix is computed from the local snapshot; a
// computation failure propagates.
func (s *BalanceService) Refresh(ctx context.Context, groupID int64) (*BalanceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.sync.SyncGroup(ctx, groupID); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("Sync failed, computing balances from local snapshot",
			"group_id", groupID, "error", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpensesForGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("refresh balances: %w", err)
	}
	settlements, err := s.store.ListSettlementsForGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("refresh balances: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matrix, err := calculator.ComputeBalances(group.Members, expenses, settlements)
	if err != nil {
		return nil, fmt.Errorf("refresh balances: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &BalanceResult{
		GroupID:    groupID,
		Members:    group.Members,
		Matrix:     matrix,
		ComputedAt: time.Now(),
	}
	s.mu.Lock()
	s.latest[groupID] = result
	s.mu.Unlock()
	return result, nil
}

// Latest returns the last computed result for the group, if one exists.
func (s *BalanceService) Latest(groupID int64) (*BalanceResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.latest[groupID]
	return r, ok
}

// Invalidate drops the cached result for the group. Called after every
// successful expense or settlement mutation.
func (s *BalanceService) Invalidate(groupID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.latest, groupID)
}
