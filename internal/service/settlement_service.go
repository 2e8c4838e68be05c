package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bestsplit/bestsplit/internal/models"
	"github.com/bestsplit/bestsplit/internal/opstate"
	"github.com/bestsplit/bestsplit/internal/storage"
	"github.com/bestsplit/bestsplit/internal/syncer"
)

// SettlementService records real-world payments between members.
// Settlements are immutable once recorded; there is no edit or delete.
type SettlementService struct {
	store    storage.Store
	sync     *syncer.Synchronizer
	balances *BalanceService

	RecordState opstate.Tracker
}

// NewSettlementService creates a SettlementService.
func NewSettlementService(store storage.Store, sync *syncer.Synchronizer, balances *BalanceService) *SettlementService {
	return &SettlementService{store: store, sync: sync, balances: balances}
}

// RecordSettlement validates and persists a settlement locally and
// remotely, then invalidates the group's balance matrix.
func (s *SettlementService) RecordSettlement(ctx context.Context, settlement *models.Settlement) error {
	s.RecordState.Begin()
	if err := s.record(ctx, settlement); err != nil {
		s.RecordState.Fail(err)
		return err
	}
	s.RecordState.Succeed()
	return nil
}

// ListSettlements returns the group's settlements, newest first.
func (s *SettlementService) ListSettlements(ctx context.Context, groupID int64) ([]*models.Settlement, error) {
	return s.store.ListSettlementsForGroup(ctx, groupID)
}

func (s *SettlementService) record(ctx context.Context, settlement *models.Settlement) error {
	group, err := s.store.GetGroup(ctx, settlement.GroupID)
	if err != nil {
		return err
	}
	if settlement.FromUserID == "" || settlement.ToUserID == "" {
		return fmt.Errorf("%w: both parties required", ErrValidation)
	}
	if settlement.FromUserID == settlement.ToUserID {
		return fmt.Errorf("%w: payer and receiver must differ", ErrValidation)
	}
	if !group.HasMember(settlement.FromUserID) {
		return fmt.Errorf("%w: payer %q is not a group member", ErrValidation, settlement.FromUserID)
	}
	if !group.HasMember(settlement.ToUserID) {
		return fmt.Errorf("%w: receiver %q is not a group member", ErrValidation, settlement.ToUserID)
	}
	if settlement.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	if err := s.store.UpsertSettlement(ctx, settlement); err != nil {
		return fmt.Errorf("record settlement: %w", err)
	}

	s.sync.PushSettlement(ctx, settlement)
	s.balances.Invalidate(settlement.GroupID)
	slog.Info("Settlement recorded", "settlement_id", settlement.ID,
		"group_id", settlement.GroupID, "from", settlement.FromUserID,
		"to", settlement.ToUserID, "amount", settlement.Amount)
	return nil
}
