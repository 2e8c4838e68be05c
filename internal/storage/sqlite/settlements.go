package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bestsplit/bestsplit/internal/models"
	"github.com/bestsplit/bestsplit/internal/storage"
)

// UpsertSettlement inserts or replaces a settlement. An ID of 0 assigns a
// new one; an existing ID overwrites the stored record (last write wins).
func (s *Store) UpsertSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().UnixMilli()
	}

	if settlement.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO settlements (group_id, from_user_id, to_user_id, amount, description, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			settlement.GroupID, settlement.FromUserID, settlement.ToUserID,
			settlement.Amount, settlement.Description, settlement.CreatedAt,
		)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert settlement for group %d: %w", settlement.GroupID, storage.ErrMissingParent)
		}
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read settlement id: %w", err)
		}
		settlement.ID = id
	} else {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO settlements (id, group_id, from_user_id, to_user_id, amount, description, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   group_id = excluded.group_id,
			   from_user_id = excluded.from_user_id,
			   to_user_id = excluded.to_user_id,
			   amount = excluded.amount,
			   description = excluded.description,
			   created_at = excluded.created_at`,
			settlement.ID, settlement.GroupID, settlement.FromUserID, settlement.ToUserID,
			settlement.Amount, settlement.Description, settlement.CreatedAt,
		)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("upsert settlement for group %d: %w", settlement.GroupID, storage.ErrMissingParent)
		}
		if err != nil {
			return fmt.Errorf("failed to upsert settlement: %w", err)
		}
	}

	s.notifier.Notify(settlement.GroupID)
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *Store) GetSettlement(ctx context.Context, id int64) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount, description, created_at
		 FROM settlements WHERE id = ?`,
		id,
	).Scan(&settlement.ID, &settlement.GroupID, &settlement.FromUserID, &settlement.ToUserID,
		&settlement.Amount, &settlement.Description, &settlement.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListSettlementsForGroup returns the group's settlements ordered by
// creation time descending.
func (s *Store) ListSettlementsForGroup(ctx context.Context, groupID int64) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount, description, created_at
		 FROM settlements WHERE group_id = ? ORDER BY created_at DESC, id DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement := &models.Settlement{}
		if err := rows.Scan(&settlement.ID, &settlement.GroupID, &settlement.FromUserID,
			&settlement.ToUserID, &settlement.Amount, &settlement.Description, &settlement.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}
