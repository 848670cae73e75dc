package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campushub/clubevents/internal/model"
)

// Memory is a map-backed implementation of every store interface,
// intended for local development and the test suite. A single mutex
// serializes all writers, which trivially satisfies the atomicity the
// RegistrationStore contract demands: the gating checks and the insert
// in Register run as one critical section.
type Memory struct {
	mu            sync.Mutex
	clubs         map[string]model.Club
	events        map[string]model.Event
	registrations map[string]model.Registration
	users         map[string]model.User
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		clubs:         make(map[string]model.Club),
		events:        make(map[string]model.Event),
		registrations: make(map[string]model.Registration),
		users:         make(map[string]model.User),
	}
}

// ─── ClubStore ────────────────────────────────────────────────────────────────

// CreateClub inserts the club and the coordinator back-reference atomically.
func (m *Memory) CreateClub(ctx context.Context, club *model.Club) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.clubs {
		if c.CoordinatorID == club.CoordinatorID {
			return ErrCoordinatorHasClub
		}
	}
	m.clubs[club.ID] = *club

	u := m.users[club.CoordinatorID]
	u.ID = club.CoordinatorID
	if u.Role == "" {
		u.Role = "coordinator"
	}
	u.ManagedClubID = club.ID
	m.users[club.CoordinatorID] = u
	return nil
}

// GetClubByID returns a single club or ErrNotFound.
func (m *Memory) GetClubByID(ctx context.Context, id string) (*model.Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clubs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// GetClubByCoordinator returns the club managed by the user, or ErrNotFound.
func (m *Memory) GetClubByCoordinator(ctx context.Context, coordinatorID string) (*model.Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.clubs {
		if c.CoordinatorID == coordinatorID {
			club := c
			return &club, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateClub persists mutable club fields.
func (m *Memory) UpdateClub(ctx context.Context, club *model.Club) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clubs[club.ID]; !ok {
		return ErrNotFound
	}
	m.clubs[club.ID] = *club
	return nil
}

// DeleteClub removes the club and clears the coordinator back-reference.
func (m *Memory) DeleteClub(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clubs[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.clubs, id)

	if u, ok := m.users[c.CoordinatorID]; ok && u.ManagedClubID == id {
		u.ManagedClubID = ""
		m.users[c.CoordinatorID] = u
	}
	return nil
}

// SetClubApproval flips the club approval flag.
func (m *Memory) SetClubApproval(ctx context.Context, id string, approved bool) (*model.Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clubs[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.IsApproved = approved
	m.clubs[id] = c
	return &c, nil
}

// ListClubs returns clubs matching the filter, newest first.
func (m *Memory) ListClubs(ctx context.Context, f ClubFilter) ([]model.Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var clubs []model.Club
	for _, c := range m.clubs {
		if f.IsApproved != nil && c.IsApproved != *f.IsApproved {
			continue
		}
		if f.IsActive != nil && c.IsActive != *f.IsActive {
			continue
		}
		clubs = append(clubs, c)
	}
	sort.Slice(clubs, func(i, j int) bool {
		return clubs[i].CreatedAt.After(clubs[j].CreatedAt)
	})
	return clubs, nil
}

// ─── EventStore ───────────────────────────────────────────────────────────────

// CreateEvent inserts a new event.
func (m *Memory) CreateEvent(ctx context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events[event.ID] = *event
	return nil
}

// GetEventByID returns a single event or ErrNotFound.
func (m *Memory) GetEventByID(ctx context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

// UpdateEvent persists mutable event fields.
func (m *Memory) UpdateEvent(ctx context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[event.ID]; !ok {
		return ErrNotFound
	}
	m.events[event.ID] = *event
	return nil
}

// DeleteEvent removes an event and its registrations.
func (m *Memory) DeleteEvent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return ErrNotFound
	}
	delete(m.events, id)
	for rid, reg := range m.registrations {
		if reg.EventID == id {
			delete(m.registrations, rid)
		}
	}
	return nil
}

// SetEventApproval flips the event approval flag.
func (m *Memory) SetEventApproval(ctx context.Context, id string, approved bool) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.IsApproved = approved
	m.events[id] = e
	return &e, nil
}

// ListEvents returns events matching the filter, most recent first.
func (m *Memory) ListEvents(ctx context.Context, f EventFilter) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var events []model.Event
	for _, e := range m.events {
		if f.IsApproved != nil && e.IsApproved != *f.IsApproved {
			continue
		}
		if f.IsActive != nil && e.IsActive != *f.IsActive {
			continue
		}
		if f.ClubID != "" && e.ClubID != f.ClubID {
			continue
		}
		if f.Category != "" && string(e.Category) != f.Category {
			continue
		}
		events = append(events, e)
	}
	sortEventsByDate(events)
	return events, nil
}

// ListEventsByCreator returns events created by the given user.
func (m *Memory) ListEventsByCreator(ctx context.Context, userID string) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var events []model.Event
	for _, e := range m.events {
		if e.CreatedBy == userID {
			events = append(events, e)
		}
	}
	sortEventsByDate(events)
	return events, nil
}

func sortEventsByDate(events []model.Event) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].EventDate.After(events[j].EventDate)
	})
}

// ─── RegistrationStore ────────────────────────────────────────────────────────

// Register admits a student under the store mutex, evaluating the full
// gating sequence and the insert as one critical section.
func (m *Memory) Register(ctx context.Context, eventID, studentID, comments string) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[eventID]
	if !ok {
		return nil, ErrNotFound
	}
	switch {
	case !e.IsApproved:
		return nil, ErrEventNotApproved
	case !e.IsActive:
		return nil, ErrEventInactive
	case !time.Now().Before(e.RegistrationDeadline):
		return nil, ErrDeadlinePassed
	}

	taken := 0
	for _, reg := range m.registrations {
		if reg.EventID != eventID {
			continue
		}
		if reg.StudentID == studentID && reg.Status != model.StatusCancelled {
			return nil, ErrAlreadyRegistered
		}
		if reg.Status.CountsAgainstCapacity() {
			taken++
		}
	}
	if taken >= e.MaxParticipants {
		return nil, ErrEventFull
	}

	reg := model.Registration{
		ID:               uuid.New().String(),
		EventID:          eventID,
		StudentID:        studentID,
		Status:           model.StatusPending,
		Comments:         comments,
		RegistrationDate: time.Now().UTC(),
	}
	m.registrations[reg.ID] = reg
	return &reg, nil
}

// GetRegistrationByID returns a single registration or ErrNotFound.
func (m *Memory) GetRegistrationByID(ctx context.Context, id string) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.registrations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &reg, nil
}

// UpdateRegistrationStatus sets the status of a registration.
func (m *Memory) UpdateRegistrationStatus(ctx context.Context, id string, status model.RegistrationStatus) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.registrations[id]
	if !ok {
		return nil, ErrNotFound
	}
	if reg.Status == model.StatusCancelled && status != model.StatusCancelled {
		for _, other := range m.registrations {
			if other.ID != id && other.EventID == reg.EventID &&
				other.StudentID == reg.StudentID && other.Status != model.StatusCancelled {
				return nil, ErrAlreadyRegistered
			}
		}
	}
	reg.Status = status
	m.registrations[id] = reg
	return &reg, nil
}

// DeleteRegistration removes a registration, freeing its slot.
func (m *Memory) DeleteRegistration(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.registrations[id]; !ok {
		return ErrNotFound
	}
	delete(m.registrations, id)
	return nil
}

// ListRegistrations returns registrations matching the filter.
func (m *Memory) ListRegistrations(ctx context.Context, f RegistrationFilter) ([]model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var regs []model.Registration
	for _, reg := range m.registrations {
		if f.EventID != "" && reg.EventID != f.EventID {
			continue
		}
		if f.StudentID != "" && reg.StudentID != f.StudentID {
			continue
		}
		if f.Status != "" && string(reg.Status) != f.Status {
			continue
		}
		regs = append(regs, reg)
	}
	sortRegistrationsByDate(regs)
	return regs, nil
}

// ListRegistrationsByEvents returns registrations for any given event.
func (m *Memory) ListRegistrationsByEvents(ctx context.Context, eventIDs []string) ([]model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		ids[id] = true
	}
	var regs []model.Registration
	for _, reg := range m.registrations {
		if ids[reg.EventID] {
			regs = append(regs, reg)
		}
	}
	sortRegistrationsByDate(regs)
	return regs, nil
}

func sortRegistrationsByDate(regs []model.Registration) {
	sort.Slice(regs, func(i, j int) bool {
		return regs[i].RegistrationDate.After(regs[j].RegistrationDate)
	})
}

// ─── UserStore ────────────────────────────────────────────────────────────────

// ListCoordinators returns users with the coordinator role.
func (m *Memory) ListCoordinators(ctx context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var users []model.User
	for _, u := range m.users {
		if u.Role == "coordinator" {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}
