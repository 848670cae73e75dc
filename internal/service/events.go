package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campushub/clubevents/internal/auth"
	"github.com/campushub/clubevents/internal/model"
	"github.com/campushub/clubevents/internal/policy"
	"github.com/campushub/clubevents/internal/repository"
)

// EventService is the event registry. It consults the club registry
// read-only for ownership and approval checks.
type EventService struct {
	events repository.EventStore
	clubs  ClubDirectory
}

// NewEventService constructs an EventService.
func NewEventService(events repository.EventStore, clubs ClubDirectory) *EventService {
	return &EventService{events: events, clubs: clubs}
}

// Create adds an event under a club. The club must exist and be
// approved at creation time; later revoking the club's approval does
// not invalidate the event. Events created by an admin are approved
// immediately.
func (s *EventService) Create(ctx context.Context, caller auth.Identity, req model.CreateEventRequest) (*model.Event, error) {
	if err := policy.Authorize(caller, policy.ActionCreateEvent, ""); err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, invalidf("event title is required")
	}
	if req.Club == "" {
		return nil, invalidf("club is required")
	}
	category, err := model.ParseCategory(req.Category)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	if req.MaxParticipants <= 0 {
		return nil, invalidf("max participants must be a positive integer")
	}
	if req.EventDate.IsZero() {
		return nil, invalidf("event date is required")
	}
	// No ordering constraint between the deadline and the event date;
	// a deadline after the event is odd but allowed.
	if req.RegistrationDeadline.IsZero() {
		return nil, invalidf("registration deadline is required")
	}

	club, err := s.clubs.GetByID(ctx, req.Club)
	if err != nil {
		return nil, fmt.Errorf("club %w", err)
	}
	if !club.IsApproved {
		return nil, repository.ErrClubNotApproved
	}
	if caller.Role == auth.RoleCoordinator && club.CoordinatorID != caller.UserID {
		return nil, policy.ErrNotOwner
	}

	event := &model.Event{
		ID:                   uuid.New().String(),
		Title:                req.Title,
		Description:          req.Description,
		ClubID:               club.ID,
		EventDate:            req.EventDate,
		EventTime:            req.EventTime,
		RegistrationDeadline: req.RegistrationDeadline,
		Venue:                req.Venue,
		Category:             category,
		MaxParticipants:      req.MaxParticipants,
		Requirements:         req.Requirements,
		CreatedBy:            caller.UserID,
		IsApproved:           caller.Role == auth.RoleAdmin,
		IsActive:             true,
		CreatedAt:            time.Now().UTC(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Get returns a single event. Public.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	return s.events.GetByID(ctx, id)
}

// List returns events matching the filter. Public.
func (s *EventService) List(ctx context.Context, f repository.EventFilter) ([]model.Event, error) {
	return s.events.List(ctx, f)
}

// Update applies a partial update. Approval state only changes through
// approve/reject.
func (s *EventService) Update(ctx context.Context, caller auth.Identity, id string, req model.UpdateEventRequest) (*model.Event, error) {
	if err := policy.Authorize(caller, policy.ActionUpdateEvent, ""); err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkEventOwnership(ctx, caller, policy.ActionUpdateEvent, event); err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalidf("event title is required")
		}
		event.Title = title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.EventDate != nil {
		event.EventDate = *req.EventDate
	}
	if req.EventTime != nil {
		event.EventTime = *req.EventTime
	}
	if req.RegistrationDeadline != nil {
		event.RegistrationDeadline = *req.RegistrationDeadline
	}
	if req.Venue != nil {
		event.Venue = *req.Venue
	}
	if req.Category != nil {
		category, err := model.ParseCategory(*req.Category)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		event.Category = category
	}
	if req.MaxParticipants != nil {
		if *req.MaxParticipants <= 0 {
			return nil, invalidf("max participants must be a positive integer")
		}
		event.MaxParticipants = *req.MaxParticipants
	}
	if req.Requirements != nil {
		event.Requirements = *req.Requirements
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes an event and its registrations.
func (s *EventService) Delete(ctx context.Context, caller auth.Identity, id string) error {
	if err := policy.Authorize(caller, policy.ActionDeleteEvent, ""); err != nil {
		return err
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkEventOwnership(ctx, caller, policy.ActionDeleteEvent, event); err != nil {
		return err
	}
	return s.events.Delete(ctx, id)
}

// SetApproval approves or rejects an event. Admin only, idempotent.
func (s *EventService) SetApproval(ctx context.Context, caller auth.Identity, id string, approved bool) (*model.Event, error) {
	if err := policy.Authorize(caller, policy.ActionApproveEvent, ""); err != nil {
		return nil, err
	}
	return s.events.SetApproval(ctx, id, approved)
}

// checkEventOwnership resolves the event's owner transitively through
// its club. An event whose club has been deleted has no owner left, so
// only admins may manage it.
func (s *EventService) checkEventOwnership(ctx context.Context, caller auth.Identity, action policy.Action, event *model.Event) error {
	if caller.Role == auth.RoleAdmin {
		return nil
	}
	club, err := s.clubs.GetByID(ctx, event.ClubID)
	if err != nil {
		return policy.ErrNotOwner
	}
	return policy.Authorize(caller, action, club.CoordinatorID)
}
