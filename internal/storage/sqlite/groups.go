package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bestsplit/bestsplit/internal/models"
	"github.com/bestsplit/bestsplit/internal/storage"
)

// CreateGroup persists a new group and assigns its ID.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().UnixMilli()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO groups (name, description, created_at, created_by) VALUES (?, ?, ?, ?)",
		group.Name, group.Description, group.CreatedAt, group.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read group id: %w", err)
	}
	group.ID = id

	if err := insertMembers(ctx, tx, id, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifier.Notify(group.ID)
	return nil
}

// GetGroup retrieves a group by ID, including its member set.
func (s *Store) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at, created_by FROM groups WHERE id = ?",
		id,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt, &group.CreatedBy)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := s.groupMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return group, nil
}

// UpdateGroup replaces a group's metadata and member set atomically.
func (s *Store) UpdateGroup(ctx context.Context, group *models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE groups SET name = ?, description = ?, created_by = ? WHERE id = ?",
		group.Name, group.Description, group.CreatedBy, group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("group %d: %w", group.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM group_members WHERE group_id = ?", group.ID); err != nil {
		return fmt.Errorf("failed to clear group members: %w", err)
	}
	if err := insertMembers(ctx, tx, group.ID, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifier.Notify(group.ID)
	return nil
}

// UpsertGroup inserts or replaces a group by its remote-assigned ID.
func (s *Store) UpsertGroup(ctx context.Context, group *models.Group) error {
	if group.ID <= 0 {
		return fmt.Errorf("upsert group: invalid id %d", group.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, description, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   description = excluded.description,
		   created_at = excluded.created_at,
		   created_by = excluded.created_by`,
		group.ID, group.Name, group.Description, group.CreatedAt, group.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert group: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM group_members WHERE group_id = ?", group.ID); err != nil {
		return fmt.Errorf("failed to clear group members: %w", err)
	}
	if err := insertMembers(ctx, tx, group.ID, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifier.Notify(group.ID)
	return nil
}

// DeleteGroup removes a group; expenses and settlements cascade.
func (s *Store) DeleteGroup(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("group %d: %w", id, storage.ErrNotFound)
	}

	s.notifier.Notify(id)
	return nil
}

// ListGroups returns all groups, newest first.
func (s *Store) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.listGroups(ctx,
		"SELECT id, name, description, created_at, created_by FROM groups ORDER BY created_at DESC")
}

// ListGroupsForMember returns the groups userID belongs to, newest first.
func (s *Store) ListGroupsForMember(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.listGroups(ctx,
		`SELECT g.id, g.name, g.description, g.created_at, g.created_by
		 FROM groups g JOIN group_members m ON m.group_id = g.id
		 WHERE m.member = ? ORDER BY g.created_at DESC`, userID)
}

func (s *Store) listGroups(ctx context.Context, query string, args ...any) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt, &group.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for _, group := range groups {
		members, err := s.groupMembers(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		group.Members = members
	}
	return groups, nil
}

func (s *Store) groupMembers(ctx context.Context, groupID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member FROM group_members WHERE group_id = ? ORDER BY member", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, groupID int64, members []string) error {
	for _, m := range members {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, member) VALUES (?, ?)",
			groupID, m,
		); err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}
	return nil
}
