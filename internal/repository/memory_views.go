package repository

import (
	"context"

	"github.com/campushub/clubevents/internal/model"
)

// Interface views over a shared Memory, so one in-memory dataset can
// stand in for all four stores at once.

// Clubs returns the ClubStore view of the memory store.
func (m *Memory) Clubs() ClubStore { return memoryClubs{m} }

// Events returns the EventStore view of the memory store.
func (m *Memory) Events() EventStore { return memoryEvents{m} }

// Registrations returns the RegistrationStore view of the memory store.
func (m *Memory) Registrations() RegistrationStore { return memoryRegistrations{m} }

// Users returns the UserStore view of the memory store.
func (m *Memory) Users() UserStore { return m }

type memoryClubs struct{ m *Memory }

func (s memoryClubs) Create(ctx context.Context, club *model.Club) error {
	return s.m.CreateClub(ctx, club)
}

func (s memoryClubs) GetByID(ctx context.Context, id string) (*model.Club, error) {
	return s.m.GetClubByID(ctx, id)
}

func (s memoryClubs) GetByCoordinator(ctx context.Context, coordinatorID string) (*model.Club, error) {
	return s.m.GetClubByCoordinator(ctx, coordinatorID)
}

func (s memoryClubs) Update(ctx context.Context, club *model.Club) error {
	return s.m.UpdateClub(ctx, club)
}

func (s memoryClubs) Delete(ctx context.Context, id string) error {
	return s.m.DeleteClub(ctx, id)
}

func (s memoryClubs) SetApproval(ctx context.Context, id string, approved bool) (*model.Club, error) {
	return s.m.SetClubApproval(ctx, id, approved)
}

func (s memoryClubs) List(ctx context.Context, f ClubFilter) ([]model.Club, error) {
	return s.m.ListClubs(ctx, f)
}

type memoryEvents struct{ m *Memory }

func (s memoryEvents) Create(ctx context.Context, event *model.Event) error {
	return s.m.CreateEvent(ctx, event)
}

func (s memoryEvents) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return s.m.GetEventByID(ctx, id)
}

func (s memoryEvents) Update(ctx context.Context, event *model.Event) error {
	return s.m.UpdateEvent(ctx, event)
}

func (s memoryEvents) Delete(ctx context.Context, id string) error {
	return s.m.DeleteEvent(ctx, id)
}

func (s memoryEvents) SetApproval(ctx context.Context, id string, approved bool) (*model.Event, error) {
	return s.m.SetEventApproval(ctx, id, approved)
}

func (s memoryEvents) List(ctx context.Context, f EventFilter) ([]model.Event, error) {
	return s.m.ListEvents(ctx, f)
}

func (s memoryEvents) ListByCreator(ctx context.Context, userID string) ([]model.Event, error) {
	return s.m.ListEventsByCreator(ctx, userID)
}

type memoryRegistrations struct{ m *Memory }

func (s memoryRegistrations) Register(ctx context.Context, eventID, studentID, comments string) (*model.Registration, error) {
	return s.m.Register(ctx, eventID, studentID, comments)
}

func (s memoryRegistrations) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	return s.m.GetRegistrationByID(ctx, id)
}

func (s memoryRegistrations) UpdateStatus(ctx context.Context, id string, status model.RegistrationStatus) (*model.Registration, error) {
	return s.m.UpdateRegistrationStatus(ctx, id, status)
}

func (s memoryRegistrations) Delete(ctx context.Context, id string) error {
	return s.m.DeleteRegistration(ctx, id)
}

func (s memoryRegistrations) List(ctx context.Context, f RegistrationFilter) ([]model.Registration, error) {
	return s.m.ListRegistrations(ctx, f)
}

func (s memoryRegistrations) ListByEvents(ctx context.Context, eventIDs []string) ([]model.Registration, error) {
	return s.m.ListRegistrationsByEvents(ctx, eventIDs)
}
