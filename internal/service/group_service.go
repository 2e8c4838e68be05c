package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bestsplit/bestsplit/internal/models"
	"github.com/bestsplit/bestsplit/internal/storage"
	"github.com/bestsplit/bestsplit/internal/syncer"
)

// GroupService implements group CRUD and membership operations.
type GroupService struct {
	store storage.Store
	sync  *syncer.Synchronizer
}

// NewGroupService creates a GroupService.
func NewGroupService(store storage.Store, sync *syncer.Synchronizer) *GroupService {
	return &GroupService{store: store, sync: sync}
}

// CreateGroup creates a group. The creator is always a member; it is
// added to the member set when missing.
func (s *GroupService) CreateGroup(ctx context.Context, name, description, createdBy string, members []string) (*models.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group name required", ErrValidation)
	}
	if createdBy == "" {
		return nil, fmt.Errorf("%w: creator required", ErrValidation)
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
		Members:     withCreator(members, createdBy),
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	slog.Info("Group created", "group_id", group.ID, "members", len(group.Members))

	s.sync.PushGroup(ctx, group)
	s.sync.Listen(group.ID)
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	return s.store.GetGroup(ctx, id)
}

// ListGroupsForMember returns the groups userID belongs to.
func (s *GroupService) ListGroupsForMember(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.store.ListGroupsForMember(ctx, userID)
}

// UpdateGroup replaces a group's metadata and member set. The creator
// stays a member regardless of the submitted member set.
func (s *GroupService) UpdateGroup(ctx context.Context, group *models.Group) error {
	if group.ID <= 0 {
		return fmt.Errorf("%w: group id required", ErrValidation)
	}
	if group.Name == "" {
		return fmt.Errorf("%w: group name required", ErrValidation)
	}

	existing, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return err
	}
	group.CreatedBy = existing.CreatedBy
	group.CreatedAt = existing.CreatedAt
	group.Members = withCreator(group.Members, existing.CreatedBy)

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	s.sync.PushGroup(ctx, group)
	return nil
}

// AddMember adds userID to the group.
func (s *GroupService) AddMember(ctx context.Context, groupID int64, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: member id required", ErrValidation)
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.HasMember(userID) {
		return nil
	}
	group.Members = append(group.Members, userID)
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	s.sync.PushGroup(ctx, group)
	return nil
}

// RemoveMember removes userID from the group. The creator cannot be
// removed.
func (s *GroupService) RemoveMember(ctx context.Context, groupID int64, userID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if userID == group.CreatedBy {
		return fmt.Errorf("%w: creator cannot leave the group", ErrValidation)
	}
	members := group.Members[:0:0]
	for _, m := range group.Members {
		if m != userID {
			members = append(members, m)
		}
	}
	group.Members = members
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	s.sync.PushGroup(ctx, group)
	return nil
}

// DeleteGroup removes a group everywhere; expenses and settlements
// cascade locally and remotely.
func (s *GroupService) DeleteGroup(ctx context.Context, id int64) error {
	if err := s.store.DeleteGroup(ctx, id); err != nil {
		return err
	}
	s.sync.StopListening(id)
	s.sync.PushGroupDelete(ctx, id)
	slog.Info("Group deleted", "group_id", id)
	return nil
}

func withCreator(members []string, createdBy string) []string {
	for _, m := range members {
		if m == createdBy {
			return members
		}
	}
	return append(append([]string(nil), members...), createdBy)
}
