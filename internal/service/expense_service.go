package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/bestsplit/bestsplit/internal/calculator"
	"github.com/bestsplit/bestsplit/internal/models"
	"github.com/bestsplit/bestsplit/internal/money"
	"github.com/bestsplit/bestsplit/internal/opstate"
	"github.com/bestsplit/bestsplit/internal/storage"
	"github.com/bestsplit/bestsplit/internal/syncer"
)

// ExpenseInput carries the fields of an add or edit expense operation.
// CustomShares holds raw user input per member and is consulted only in
// SplitCustom mode.
type ExpenseInput struct {
	GroupID      int64
	Description  string
	Amount       float64
	PaidBy       string
	Participants []string // defaults to the whole group when empty
	Mode         calculator.SplitMode
	CustomShares map[string]string
}

// ExpenseService implements add, edit and delete of expenses.
//
// The operation outcome trackers mirror what a host UI observes: Begin on
// entry, Succeed/Fail on exit, terminal states consumed once.
type ExpenseService struct {
	store    storage.Store
	sync     *syncer.Synchronizer
	balances *BalanceService

	AddState    opstate.Tracker
	UpdateState opstate.Tracker
	DeleteState opstate.Tracker
}

// NewExpenseService creates an ExpenseService.
func NewExpenseService(store storage.Store, sync *syncer.Synchronizer, balances *BalanceService) *ExpenseService {
	return &ExpenseService{store: store, sync: sync, balances: balances}
}

// AddExpense validates the input, computes the share map and persists the
// expense locally and remotely. On success the group's balance matrix is
// invalidated.
func (s *ExpenseService) AddExpense(ctx context.Context, input ExpenseInput) (*models.Expense, error) {
	s.AddState.Begin()
	expense, err := s.saveExpense(ctx, 0, 0, input)
	if err != nil {
		s.AddState.Fail(err)
		return nil, err
	}
	s.AddState.Succeed()
	return expense, nil
}

// UpdateExpense replaces an existing expense's description, amount, payer
// and share map atomically, after the same validation as AddExpense. The
// expense must already belong to the input's group; an ID owned by a
// different group reads as not found.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, input ExpenseInput) (*models.Expense, error) {
	s.UpdateState.Begin()
	if id <= 0 {
		err := fmt.Errorf("%w: expense id required", ErrValidation)
		s.UpdateState.Fail(err)
		return nil, err
	}
	existing, err := s.store.GetExpense(ctx, id)
	if err != nil {
		s.UpdateState.Fail(err)
		return nil, err
	}
	if existing.GroupID != input.GroupID {
		err := fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
		s.UpdateState.Fail(err)
		return nil, err
	}
	expense, err := s.saveExpense(ctx, id, existing.CreatedAt, input)
	if err != nil {
		s.UpdateState.Fail(err)
		return nil, err
	}
	s.UpdateState.Succeed()
	return expense, nil
}

// DeleteExpense removes an expense locally and remotely and invalidates
// the group's balance matrix. An expense that belongs to a different
// group reads as not found.
func (s *ExpenseService) DeleteExpense(ctx context.Context, groupID, id int64) error {
	s.DeleteState.Begin()
	expense, err := s.store.GetExpense(ctx, id)
	if err != nil {
		s.DeleteState.Fail(err)
		return err
	}
	if expense.GroupID != groupID {
		err := fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
		s.DeleteState.Fail(err)
		return err
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		s.DeleteState.Fail(err)
		return err
	}
	s.sync.PushExpenseDelete(ctx, groupID, id)
	s.balances.Invalidate(groupID)
	s.DeleteState.Succeed()
	slog.Info("Expense deleted", "expense_id", id, "group_id", groupID)
	return nil
}

// GetExpense retrieves an expense by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// ListExpenses returns the group's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, groupID int64) ([]*models.Expense, error) {
	return s.store.ListExpensesForGroup(ctx, groupID)
}

func (s *ExpenseService) saveExpense(ctx context.Context, id, createdAt int64, input ExpenseInput) (*models.Expense, error) {
	group, err := s.store.GetGroup(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}
	if input.Amount < 0 {
		return nil, fmt.Errorf("%w: amount cannot be negative", ErrValidation)
	}
	if input.PaidBy == "" {
		return nil, fmt.Errorf("%w: payer required", ErrValidation)
	}
	if !group.HasMember(input.PaidBy) {
		return nil, fmt.Errorf("%w: payer %q is not a group member", ErrValidation, input.PaidBy)
	}

	participants := input.Participants
	if len(participants) == 0 {
		participants = group.Members
	}
	for _, p := range participants {
		if !group.HasMember(p) {
			return nil, fmt.Errorf("%w: participant %q is not a group member", ErrValidation, p)
		}
	}

	total := money.FromFloat(input.Amount)
	shares, err := calculator.ComputeShares(participants, total, input.Mode, input.CustomShares)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !calculator.SharesMatchTotal(shares, total) {
		return nil, fmt.Errorf("%w: shares sum %s does not match total %s",
			ErrValidation, money.Sum(shares).StringFixed(2), total.StringFixed(2))
	}

	expense := &models.Expense{
		ID:          id,
		GroupID:     input.GroupID,
		Description: input.Description,
		Amount:      input.Amount,
		PaidBy:      input.PaidBy,
		PaidFor:     sharesToWire(shares),
		CreatedAt:   createdAt,
	}
	if err := s.store.UpsertExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("save expense: %w", err)
	}

	s.sync.PushExpense(ctx, expense)
	s.balances.Invalidate(expense.GroupID)
	slog.Info("Expense saved", "expense_id", expense.ID, "group_id", expense.GroupID,
		"amount", expense.Amount, "paid_by", expense.PaidBy)
	return expense, nil
}

func sharesToWire(shares map[string]decimal.Decimal) map[string]float64 {
	wire := make(map[string]float64, len(shares))
	for member, share := range shares {
		wire[member] = share.InexactFloat64()
	}
	return wire
}
