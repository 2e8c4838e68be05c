package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bestsplit/bestsplit/internal/models"
)

// Ensure Memory implements the full ledger surface.
var _ Ledger = (*Memory)(nil)

// Memory is an in-process document store honoring the ledger contract.
// It backs single-node deployments and tests; a cloud document store
// slots in behind the same interfaces.
//
// Subscribers see every snapshot in write order: the write that produced
// a snapshot does not return until every subscriber's callback has run.
// Callbacks therefore must not call back into the ledger.
type Memory struct {
	mu          sync.RWMutex
	groups      map[int64]*models.Group
	expenses    map[int64]map[int64]*models.Expense    // groupID -> id -> doc
	settlements map[int64]map[int64]*models.Settlement // groupID -> id -> doc
	legacy      map[int64]*models.Expense              // flat collection, id -> doc

	nextSub int
	expSubs map[int64]map[int]func([]*models.Expense)
	setSubs map[int64]map[int]func([]*models.Settlement)
}

// NewMemory creates an empty in-process ledger.
func NewMemory() *Memory {
	return &Memory{
		groups:      make(map[int64]*models.Group),
		expenses:    make(map[int64]map[int64]*models.Expense),
		settlements: make(map[int64]map[int64]*models.Settlement),
		legacy:      make(map[int64]*models.Expense),
		expSubs:     make(map[int64]map[int]func([]*models.Expense)),
		setSubs:     make(map[int64]map[int]func([]*models.Settlement)),
	}
}

// GetAllGroups returns every group document.
func (m *Memory) GetAllGroups(ctx context.Context) ([]*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	groups := make([]*models.Group, 0, len(m.groups))
	for _, g := range m.groups {
		cp := *g
		groups = append(groups, &cp)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].CreatedAt > groups[j].CreatedAt })
	return groups, nil
}

// GetGroup returns one group document by ID.
func (m *Memory) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %d: %w", id, ErrNotFound)
	}
	cp := *g
	return &cp, nil
}

// SetGroup upserts a group document.
func (m *Memory) SetGroup(ctx context.Context, group *models.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *group
	cp.Members = append([]string(nil), group.Members...)
	m.groups[group.ID] = &cp
	return nil
}

// DeleteGroup removes a group document and its collections.
func (m *Memory) DeleteGroup(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups, id)
	delete(m.expenses, id)
	delete(m.settlements, id)
	m.notifyExpensesLocked(id)
	m.notifySettlementsLocked(id)
	return nil
}

// GetAllExpenses returns the group's expenses, newest first.
func (m *Memory) GetAllExpenses(ctx context.Context, groupID int64) ([]*models.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expenseSnapshot(groupID), nil
}

// GetExpense returns one expense document.
func (m *Memory) GetExpense(ctx context.Context, groupID, id int64) (*models.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.expenses[groupID][id]
	if !ok {
		return nil, fmt.Errorf("expense %d: %w", id, ErrNotFound)
	}
	return copyExpense(e), nil
}

// SetExpense upserts an expense into the group-scoped collection.
func (m *Memory) SetExpense(ctx context.Context, expense *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expenses[expense.GroupID] == nil {
		m.expenses[expense.GroupID] = make(map[int64]*models.Expense)
	}
	m.expenses[expense.GroupID][expense.ID] = copyExpense(expense)
	m.notifyExpensesLocked(expense.GroupID)
	return nil
}

// DeleteExpense removes an expense document.
func (m *Memory) DeleteExpense(ctx context.Context, groupID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.expenses[groupID], id)
	delete(m.legacy, id)
	m.notifyExpensesLocked(groupID)
	return nil
}

// SubscribeExpenses registers a snapshot listener for the group. The
// current snapshot is delivered before Subscribe returns, so no write
// can slip between registration and the initial snapshot.
func (m *Memory) SubscribeExpenses(groupID int64, fn func([]*models.Expense)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expSubs[groupID] == nil {
		m.expSubs[groupID] = make(map[int]func([]*models.Expense))
	}
	id := m.nextSub
	m.nextSub++
	m.expSubs[groupID][id] = fn

	fn(m.expenseSnapshot(groupID))

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.expSubs[groupID], id)
	}
}

// LegacyExpenses returns the flat-collection documents for groupID.
func (m *Memory) LegacyExpenses(ctx context.Context, groupID int64) ([]*models.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Expense
	for _, e := range m.legacy {
		if e.GroupID == groupID {
			out = append(out, copyExpense(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

// SeedLegacyExpense places a document in the legacy flat collection.
// Used to exercise the migration path.
func (m *Memory) SeedLegacyExpense(expense *models.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.legacy[expense.ID] = copyExpense(expense)
}

// GetAllSettlements returns the group's settlements, newest first.
func (m *Memory) GetAllSettlements(ctx context.Context, groupID int64) ([]*models.Settlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settlementSnapshot(groupID), nil
}

// GetSettlement returns one settlement document.
func (m *Memory) GetSettlement(ctx context.Context, groupID, id int64) (*models.Settlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.settlements[groupID][id]
	if !ok {
		return nil, fmt.Errorf("settlement %d: %w", id, ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

// SetSettlement upserts a settlement document.
func (m *Memory) SetSettlement(ctx context.Context, settlement *models.Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settlements[settlement.GroupID] == nil {
		m.settlements[settlement.GroupID] = make(map[int64]*models.Settlement)
	}
	cp := *settlement
	m.settlements[settlement.GroupID][settlement.ID] = &cp
	m.notifySettlementsLocked(settlement.GroupID)
	return nil
}

// DeleteSettlement removes a settlement document.
func (m *Memory) DeleteSettlement(ctx context.Context, groupID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.settlements[groupID], id)
	m.notifySettlementsLocked(groupID)
	return nil
}

// SubscribeSettlements registers a snapshot listener for the group, with
// the same delivery guarantees as SubscribeExpenses.
func (m *Memory) SubscribeSettlements(groupID int64, fn func([]*models.Settlement)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setSubs[groupID] == nil {
		m.setSubs[groupID] = make(map[int]func([]*models.Settlement))
	}
	id := m.nextSub
	m.nextSub++
	m.setSubs[groupID][id] = fn

	fn(m.settlementSnapshot(groupID))

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.setSubs[groupID], id)
	}
}

func (m *Memory) expenseSnapshot(groupID int64) []*models.Expense {
	var out []*models.Expense
	for _, e := range m.expenses[groupID] {
		out = append(out, copyExpense(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

func (m *Memory) settlementSnapshot(groupID int64) []*models.Settlement {
	var out []*models.Settlement
	for _, s := range m.settlements[groupID] {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

// notifyExpensesLocked delivers the current snapshot to every expense
// subscriber for the group. Caller must hold m.mu.
func (m *Memory) notifyExpensesLocked(groupID int64) {
	snapshot := m.expenseSnapshot(groupID)
	for _, fn := range m.expSubs[groupID] {
		fn(snapshot)
	}
}

// notifySettlementsLocked delivers the current snapshot to every
// settlement subscriber for the group. Caller must hold m.mu.
func (m *Memory) notifySettlementsLocked(groupID int64) {
	snapshot := m.settlementSnapshot(groupID)
	for _, fn := range m.setSubs[groupID] {
		fn(snapshot)
	}
}

func copyExpense(e *models.Expense) *models.Expense {
	cp := *e
	cp.PaidFor = make(map[string]float64, len(e.PaidFor))
	for k, v := range e.PaidFor {
		cp.PaidFor[k] = v
	}
	return &cp
}
