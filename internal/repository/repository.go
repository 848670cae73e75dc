// Package repository implements persistence for the engine. Stores are
// defined as interfaces with a Postgres (pgx) implementation for
// production and a map-backed implementation for development and tests.
package repository

import (
	"context"
	"errors"

	"github.com/campushub/clubevents/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Business-rule violations surfaced by stores. Handlers map these to
// 400 responses with the message verbatim.
var (
	ErrCoordinatorHasClub = errors.New("this coordinator already manages a club")
	ErrClubNotApproved    = errors.New("cannot create event for unapproved club")
	ErrEventNotApproved   = errors.New("cannot register for unapproved event")
	ErrEventInactive      = errors.New("event is not active")
	ErrDeadlinePassed     = errors.New("registration deadline has passed")
	ErrAlreadyRegistered  = errors.New("you are already registered for this event")
	ErrEventFull          = errors.New("event has reached maximum participants")
)

// ClubFilter selects clubs by exact match; nil fields are ignored.
type ClubFilter struct {
	IsApproved *bool
	IsActive   *bool
}

// EventFilter selects events by exact match; zero fields are ignored.
type EventFilter struct {
	IsApproved *bool
	IsActive   *bool
	ClubID     string
	Category   string
}

// RegistrationFilter selects registrations by exact match; zero fields
// are ignored.
type RegistrationFilter struct {
	EventID   string
	StudentID string
	Status    string
}

// ClubStore persists clubs and maintains the coordinator back-reference.
type ClubStore interface {
	// Create inserts the club and sets the coordinator's managed-club
	// back-reference in the same transaction. Returns
	// ErrCoordinatorHasClub if the coordinator already has a club.
	Create(ctx context.Context, club *model.Club) error
	GetByID(ctx context.Context, id string) (*model.Club, error)
	// GetByCoordinator returns the club managed by the given user, or
	// ErrNotFound.
	GetByCoordinator(ctx context.Context, coordinatorID string) (*model.Club, error)
	Update(ctx context.Context, club *model.Club) error
	// Delete removes the club and clears the former coordinator's
	// back-reference in the same transaction. Events hosted by the club
	// are left in place.
	Delete(ctx context.Context, id string) error
	// SetApproval flips the approval flag. Idempotent.
	SetApproval(ctx context.Context, id string, approved bool) (*model.Club, error)
	List(ctx context.Context, f ClubFilter) ([]model.Club, error)
}

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error
	// SetApproval flips the approval flag. Idempotent.
	SetApproval(ctx context.Context, id string, approved bool) (*model.Event, error)
	List(ctx context.Context, f EventFilter) ([]model.Event, error)
	ListByCreator(ctx context.Context, userID string) ([]model.Event, error)
}

// RegistrationStore persists registrations. Register is the
// concurrency-critical admission path: implementations must evaluate
// the full gating sequence and the insert as one atomic unit per event,
// so concurrent callers can neither duplicate a (event, student) pair
// nor admit more confirmed/attended registrations than the event's
// capacity.
type RegistrationStore interface {
	// Register admits the student to the event, creating a pending
	// registration. Gating order: ErrNotFound, ErrEventNotApproved,
	// ErrEventInactive, ErrDeadlinePassed, ErrAlreadyRegistered,
	// ErrEventFull. Pending registrations do not count against
	// capacity; only confirmed and attended ones do.
	Register(ctx context.Context, eventID, studentID, comments string) (*model.Registration, error)
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	// UpdateStatus sets the status. Returns ErrAlreadyRegistered when
	// reviving a cancelled registration would collide with a live one
	// for the same (event, student).
	UpdateStatus(ctx context.Context, id string, status model.RegistrationStatus) (*model.Registration, error)
	// Delete removes the registration outright, freeing its capacity
	// slot immediately.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f RegistrationFilter) ([]model.Registration, error)
	ListByEvents(ctx context.Context, eventIDs []string) ([]model.Registration, error)
}

// UserStore exposes the minimal user records the engine keeps.
type UserStore interface {
	ListCoordinators(ctx context.Context) ([]model.User, error)
}
