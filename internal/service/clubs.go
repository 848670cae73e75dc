package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campushub/clubevents/internal/auth"
	"github.com/campushub/clubevents/internal/model"
	"github.com/campushub/clubevents/internal/policy"
	"github.com/campushub/clubevents/internal/repository"
)

// ClubService is the club registry: it owns club lifecycle and the
// coordinator back-reference.
type ClubService struct {
	clubs repository.ClubStore
	users repository.UserStore
}

// NewClubService constructs a ClubService.
func NewClubService(clubs repository.ClubStore, users repository.UserStore) *ClubService {
	return &ClubService{clubs: clubs, users: users}
}

// Create registers a new club. Coordinators create for themselves; an
// admin may name another user as coordinator. Clubs created by an admin
// are approved immediately, everyone else's wait for approval.
func (s *ClubService) Create(ctx context.Context, caller auth.Identity, req model.CreateClubRequest) (*model.Club, error) {
	if err := policy.Authorize(caller, policy.ActionCreateClub, ""); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, invalidf("club name is required")
	}
	category, err := model.ParseCategory(req.Category)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	coordinatorID := caller.UserID
	if caller.Role == auth.RoleAdmin && req.Coordinator != "" {
		coordinatorID = req.Coordinator
	}

	// Friendly pre-check; the unique constraint on coordinator_id is
	// what actually holds under concurrent creates.
	if _, err := s.clubs.GetByCoordinator(ctx, coordinatorID); err == nil {
		return nil, repository.ErrCoordinatorHasClub
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	club := &model.Club{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Description:   req.Description,
		Category:      category,
		CoordinatorID: coordinatorID,
		ContactEmail:  req.ContactEmail,
		IsApproved:    caller.Role == auth.RoleAdmin,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.clubs.Create(ctx, club); err != nil {
		return nil, err
	}
	return club, nil
}

// Get returns a single club. Public.
func (s *ClubService) Get(ctx context.Context, id string) (*model.Club, error) {
	return s.clubs.GetByID(ctx, id)
}

// List returns clubs matching the filter. Public.
func (s *ClubService) List(ctx context.Context, f repository.ClubFilter) ([]model.Club, error) {
	return s.clubs.List(ctx, f)
}

// Update applies a partial update to a club. The coordinator and the
// approval flag cannot change through this path.
func (s *ClubService) Update(ctx context.Context, caller auth.Identity, id string, req model.UpdateClubRequest) (*model.Club, error) {
	// Role gate before the lookup, so a caller whose role can never
	// update clubs learns nothing about whether the club exists.
	if err := policy.Authorize(caller, policy.ActionUpdateClub, ""); err != nil {
		return nil, err
	}

	club, err := s.clubs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller, policy.ActionUpdateClub, club.CoordinatorID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalidf("club name is required")
		}
		club.Name = name
	}
	if req.Description != nil {
		club.Description = *req.Description
	}
	if req.Category != nil {
		category, err := model.ParseCategory(*req.Category)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		club.Category = category
	}
	if req.ContactEmail != nil {
		club.ContactEmail = *req.ContactEmail
	}
	if req.IsActive != nil {
		club.IsActive = *req.IsActive
	}

	if err := s.clubs.Update(ctx, club); err != nil {
		return nil, err
	}
	return club, nil
}

// Delete removes a club. Admin only; clears the coordinator's
// back-reference but leaves the club's events in place.
func (s *ClubService) Delete(ctx context.Context, caller auth.Identity, id string) error {
	if err := policy.Authorize(caller, policy.ActionDeleteClub, ""); err != nil {
		return err
	}
	return s.clubs.Delete(ctx, id)
}

// SetApproval approves or rejects a club. Admin only, idempotent.
func (s *ClubService) SetApproval(ctx context.Context, caller auth.Identity, id string, approved bool) (*model.Club, error) {
	if err := policy.Authorize(caller, policy.ActionApproveClub, ""); err != nil {
		return nil, err
	}
	return s.clubs.SetApproval(ctx, id, approved)
}

// Coordinators lists coordinator users with their managed clubs. Admin only.
func (s *ClubService) Coordinators(ctx context.Context, caller auth.Identity) ([]model.User, error) {
	if err := policy.Authorize(caller, policy.ActionListCoordinators, ""); err != nil {
		return nil, err
	}
	users, err := s.users.ListCoordinators(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coordinators: %w", err)
	}
	return users, nil
}
