package service

import (
	"context"

	"github.com/campushub/clubevents/internal/auth"
	"github.com/campushub/clubevents/internal/model"
	"github.com/campushub/clubevents/internal/policy"
	"github.com/campushub/clubevents/internal/repository"
)

// RegistrationService is the registration ledger. The gating sequence
// itself lives in the store's Register, which runs it atomically per
// event; this layer contributes authorization and input validation.
type RegistrationService struct {
	registrations repository.RegistrationStore
	events        EventDirectory
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(registrations repository.RegistrationStore, events EventDirectory) *RegistrationService {
	return &RegistrationService{registrations: registrations, events: events}
}

// Register creates a pending registration for the caller. Students
// only; a registration is always created for the caller themselves.
func (s *RegistrationService) Register(ctx context.Context, caller auth.Identity, req model.RegisterRequest) (*model.Registration, error) {
	if err := policy.Authorize(caller, policy.ActionRegister, ""); err != nil {
		return nil, err
	}
	if req.Event == "" {
		return nil, invalidf("event is required")
	}
	return s.registrations.Register(ctx, req.Event, caller.UserID, req.Comments)
}

// Get returns a single registration. Any authenticated caller.
func (s *RegistrationService) Get(ctx context.Context, caller auth.Identity, id string) (*model.Registration, error) {
	if err := policy.Authorize(caller, policy.ActionViewRegistration, ""); err != nil {
		return nil, err
	}
	return s.registrations.GetByID(ctx, id)
}

// UpdateStatus changes a registration's status. Coordinators and
// admins; transitions between the four statuses are unconstrained.
//
// Any coordinator may change any registration, not only the owner of
// the underlying event's club.
// TODO: confirm with product whether this should be restricted to the
// owning club's coordinator.
func (s *RegistrationService) UpdateStatus(ctx context.Context, caller auth.Identity, id, rawStatus string) (*model.Registration, error) {
	if err := policy.Authorize(caller, policy.ActionUpdateRegistration, ""); err != nil {
		return nil, err
	}
	status, err := model.ParseRegistrationStatus(rawStatus)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	return s.registrations.UpdateStatus(ctx, id, status)
}

// Cancel removes the caller's registration outright, freeing its
// capacity slot immediately. Owning student only.
func (s *RegistrationService) Cancel(ctx context.Context, caller auth.Identity, id string) error {
	if err := policy.Authorize(caller, policy.ActionCancelRegistration, ""); err != nil {
		return err
	}

	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(caller, policy.ActionCancelRegistration, reg.StudentID); err != nil {
		return err
	}
	return s.registrations.Delete(ctx, id)
}

// ListMine returns the caller's registrations. Students only.
func (s *RegistrationService) ListMine(ctx context.Context, caller auth.Identity) ([]model.Registration, error) {
	if err := policy.Authorize(caller, policy.ActionListOwnRegistrations, ""); err != nil {
		return nil, err
	}
	return s.registrations.List(ctx, repository.RegistrationFilter{StudentID: caller.UserID})
}

// ListForMyEvents returns registrations for events the caller created.
// Coordinators only.
func (s *RegistrationService) ListForMyEvents(ctx context.Context, caller auth.Identity) ([]model.Registration, error) {
	if err := policy.Authorize(caller, policy.ActionListEventRegistrations, ""); err != nil {
		return nil, err
	}
	events, err := s.events.ListByCreator(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return s.registrations.ListByEvents(ctx, ids)
}

// ListAll returns registrations matching the filter. Admin only.
func (s *RegistrationService) ListAll(ctx context.Context, caller auth.Identity, f repository.RegistrationFilter) ([]model.Registration, error) {
	if err := policy.Authorize(caller, policy.ActionListAllRegistrations, ""); err != nil {
		return nil, err
	}
	return s.registrations.List(ctx, f)
}
