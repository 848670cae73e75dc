package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campushub/clubevents/internal/auth"
	"github.com/campushub/clubevents/internal/model"
	"github.com/campushub/clubevents/internal/policy"
	"github.com/campushub/clubevents/internal/repository"
)

type eventFixture struct {
	clubs  *ClubService
	events *EventService
	admin  auth.Identity
	owner  auth.Identity
	club   *model.Club
}

// newEventFixture stands up both registries with an approved club owned
// by a coordinator.
func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	mem := repository.NewMemory()
	f := &eventFixture{
		clubs:  NewClubService(mem.Clubs(), mem.Users()),
		events: NewEventService(mem.Events(), mem.Clubs()),
		admin:  asAdmin(),
		owner:  asCoordinator(),
	}
	club, err := f.clubs.Create(context.Background(), f.owner, model.CreateClubRequest{
		Name: "Coding Club", Category: "technical",
	})
	if err != nil {
		t.Fatalf("create club: %v", err)
	}
	if _, err := f.clubs.SetApproval(context.Background(), f.admin, club.ID, true); err != nil {
		t.Fatalf("approve club: %v", err)
	}
	f.club = club
	return f
}

func validEventRequest(clubID string) model.CreateEventRequest {
	return model.CreateEventRequest{
		Title:                "Hack Night",
		Club:                 clubID,
		EventDate:            time.Now().Add(72 * time.Hour),
		RegistrationDeadline: time.Now().Add(48 * time.Hour),
		Category:             "technical",
		MaxParticipants:      30,
	}
}

func TestEventCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("coordinator creates unapproved", func(t *testing.T) {
		f := newEventFixture(t)
		event, err := f.events.Create(ctx, f.owner, validEventRequest(f.club.ID))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if event.IsApproved {
			t.Error("coordinator-created event should await approval")
		}
		if event.CreatedBy != f.owner.UserID {
			t.Errorf("created_by = %q, want caller", event.CreatedBy)
		}
	})

	t.Run("admin creates pre-approved", func(t *testing.T) {
		f := newEventFixture(t)
		event, err := f.events.Create(ctx, f.admin, validEventRequest(f.club.ID))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if !event.IsApproved {
			t.Error("admin-created event should be approved immediately")
		}
	})

	t.Run("unapproved club rejected", func(t *testing.T) {
		f := newEventFixture(t)
		if _, err := f.clubs.SetApproval(ctx, f.admin, f.club.ID, false); err != nil {
			t.Fatalf("reject club: %v", err)
		}
		if _, err := f.events.Create(ctx, f.owner, validEventRequest(f.club.ID)); !errors.Is(err, repository.ErrClubNotApproved) {
			t.Errorf("got %v, want ErrClubNotApproved", err)
		}
	})

	t.Run("revoking approval keeps existing events", func(t *testing.T) {
		f := newEventFixture(t)
		event, err := f.events.Create(ctx, f.owner, validEventRequest(f.club.ID))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := f.clubs.SetApproval(ctx, f.admin, f.club.ID, false); err != nil {
			t.Fatalf("reject club: %v", err)
		}
		if _, err := f.events.Get(ctx, event.ID); err != nil {
			t.Errorf("event should survive club rejection: %v", err)
		}
	})

	t.Run("foreign club denied", func(t *testing.T) {
		f := newEventFixture(t)
		if _, err := f.events.Create(ctx, asCoordinator(), validEventRequest(f.club.ID)); !errors.Is(err, policy.ErrNotOwner) {
			t.Errorf("got %v, want ErrNotOwner", err)
		}
	})

	t.Run("missing club", func(t *testing.T) {
		f := newEventFixture(t)
		if _, err := f.events.Create(ctx, f.owner, validEventRequest(uuid.New().String())); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("student denied", func(t *testing.T) {
		f := newEventFixture(t)
		if _, err := f.events.Create(ctx, asStudent(), validEventRequest(f.club.ID)); !policy.IsDenied(err) {
			t.Errorf("got %v, want denial", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		f := newEventFixture(t)
		var verr *ValidationError

		req := validEventRequest(f.club.ID)
		req.Title = ""
		if _, err := f.events.Create(ctx, f.owner, req); !errors.As(err, &verr) {
			t.Errorf("blank title: %v", err)
		}

		req = validEventRequest(f.club.ID)
		req.MaxParticipants = 0
		if _, err := f.events.Create(ctx, f.owner, req); !errors.As(err, &verr) {
			t.Errorf("zero capacity: %v", err)
		}

		req = validEventRequest(f.club.ID)
		req.MaxParticipants = -5
		if _, err := f.events.Create(ctx, f.owner, req); !errors.As(err, &verr) {
			t.Errorf("negative capacity: %v", err)
		}

		req = validEventRequest(f.club.ID)
		req.EventDate = time.Time{}
		if _, err := f.events.Create(ctx, f.owner, req); !errors.As(err, &verr) {
			t.Errorf("missing date: %v", err)
		}
	})
}

func TestEventUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture(t)
	event, err := f.events.Create(ctx, f.owner, validEventRequest(f.club.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("owner patches", func(t *testing.T) {
		venue := "Main Auditorium"
		capacity := 50
		updated, err := f.events.Update(ctx, f.owner, event.ID, model.UpdateEventRequest{
			Venue: &venue, MaxParticipants: &capacity,
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Venue != venue || updated.MaxParticipants != capacity {
			t.Errorf("patch not applied: %+v", updated)
		}
		if updated.Title != event.Title {
			t.Error("unset fields must be untouched")
		}
	})

	t.Run("other coordinator denied", func(t *testing.T) {
		venue := "elsewhere"
		if _, err := f.events.Update(ctx, asCoordinator(), event.ID, model.UpdateEventRequest{Venue: &venue}); !errors.Is(err, policy.ErrNotOwner) {
			t.Errorf("got %v, want ErrNotOwner", err)
		}
		if err := f.events.Delete(ctx, asCoordinator(), event.ID); !errors.Is(err, policy.ErrNotOwner) {
			t.Errorf("delete: got %v, want ErrNotOwner", err)
		}
	})

	t.Run("invalid capacity patch", func(t *testing.T) {
		zero := 0
		var verr *ValidationError
		if _, err := f.events.Update(ctx, f.owner, event.ID, model.UpdateEventRequest{MaxParticipants: &zero}); !errors.As(err, &verr) {
			t.Errorf("got %v, want validation error", err)
		}
	})

	t.Run("admin deletes", func(t *testing.T) {
		if err := f.events.Delete(ctx, f.admin, event.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := f.events.Get(ctx, event.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("after delete: %v", err)
		}
	})
}

// An event whose club was deleted keeps no owner: only admins can still
// manage it.
func TestEventOrphanedByClubDelete(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture(t)
	event, err := f.events.Create(ctx, f.owner, validEventRequest(f.club.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.clubs.Delete(ctx, f.admin, f.club.ID); err != nil {
		t.Fatalf("delete club: %v", err)
	}

	if _, err := f.events.Get(ctx, event.ID); err != nil {
		t.Fatalf("orphaned event should remain: %v", err)
	}
	venue := "nowhere"
	if _, err := f.events.Update(ctx, f.owner, event.ID, model.UpdateEventRequest{Venue: &venue}); !errors.Is(err, policy.ErrNotOwner) {
		t.Errorf("orphan update by coordinator = %v, want ErrNotOwner", err)
	}
	if _, err := f.events.Update(ctx, f.admin, event.ID, model.UpdateEventRequest{Venue: &venue}); err != nil {
		t.Errorf("orphan update by admin: %v", err)
	}
}

func TestEventApproval(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture(t)
	event, err := f.events.Create(ctx, f.owner, validEventRequest(f.club.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.events.SetApproval(ctx, f.owner, event.ID, true); !policy.IsDenied(err) {
		t.Errorf("coordinator approval = %v, want denial", err)
	}
	approved, err := f.events.SetApproval(ctx, f.admin, event.ID, true)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !approved.IsApproved {
		t.Error("approval flag not set")
	}
}
