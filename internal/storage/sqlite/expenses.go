package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bestsplit/bestsplit/internal/models"
	"github.com/bestsplit/bestsplit/internal/storage"
)

// UpsertExpense inserts or replaces an expense. An ID of 0 assigns a new
// one; an existing ID overwrites the stored record and its share map
// wholesale (last write wins).
func (s *Store) UpsertExpense(ctx context.Context, expense *models.Expense) error {
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().UnixMilli()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if expense.ID == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (group_id, description, amount, paid_by, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			expense.GroupID, expense.Description, expense.Amount, expense.PaidBy, expense.CreatedAt,
		)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert expense for group %d: %w", expense.GroupID, storage.ErrMissingParent)
		}
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read expense id: %w", err)
		}
		expense.ID = id
	} else {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, group_id, description, amount, paid_by, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   group_id = excluded.group_id,
			   description = excluded.description,
			   amount = excluded.amount,
			   paid_by = excluded.paid_by,
			   created_at = excluded.created_at`,
			expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.PaidBy, expense.CreatedAt,
		)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("upsert expense for group %d: %w", expense.GroupID, storage.ErrMissingParent)
		}
		if err != nil {
			return fmt.Errorf("failed to upsert expense: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM expense_shares WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to clear expense shares: %w", err)
		}
	}

	for member, amount := range expense.PaidFor {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, member, amount) VALUES (?, ?, ?)",
			expense.ID, member, amount,
		); err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifier.Notify(expense.GroupID)
	return nil
}

// GetExpense retrieves an expense by ID, including its share map.
func (s *Store) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	expense := &models.Expense{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, description, amount, paid_by, created_at FROM expenses WHERE id = ?",
		id,
	).Scan(&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount, &expense.PaidBy, &expense.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadShares(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense removes an expense by ID.
func (s *Store) DeleteExpense(ctx context.Context, id int64) error {
	var groupID int64
	err := s.db.QueryRowContext(ctx, "SELECT group_id FROM expenses WHERE id = ?", id).Scan(&groupID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check expense existence: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	s.notifier.Notify(groupID)
	return nil
}

// ListExpensesForGroup returns the group's expenses ordered by creation
// time descending.
func (s *Store) ListExpensesForGroup(ctx context.Context, groupID int64) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, description, amount, paid_by, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at DESC, id DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.Description,
			&expense.Amount, &expense.PaidBy, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if err := s.loadShares(ctx, expense); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

func (s *Store) loadShares(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member, amount FROM expense_shares WHERE expense_id = ?", expense.ID)
	if err != nil {
		return fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	expense.PaidFor = make(map[string]float64)
	for rows.Next() {
		var member string
		var amount float64
		if err := rows.Scan(&member, &amount); err != nil {
			return fmt.Errorf("failed to scan expense share: %w", err)
		}
		expense.PaidFor[member] = amount
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return nil
}
