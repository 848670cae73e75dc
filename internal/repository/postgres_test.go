//go:build integration

package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/clubevents/internal/database"
	"github.com/campushub/clubevents/internal/model"
)

// Run with: go test -tags integration ./internal/repository \
// against a disposable database named by TEST_DATABASE_URL.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := database.InitSchema(context.Background(), pool); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return pool
}

func TestPostgresRegistrationLifecycle(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	clubs := NewPostgresClubs(pool)
	events := NewPostgresEvents(pool)
	regs := NewPostgresRegistrations(pool)

	club := &model.Club{
		ID:            uuid.New().String(),
		Name:          "Chess Club " + uuid.New().String()[:8],
		Category:      model.CategoryOther,
		CoordinatorID: uuid.New().String(),
		IsApproved:    true,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := clubs.Create(ctx, club); err != nil {
		t.Fatalf("create club: %v", err)
	}
	t.Cleanup(func() { _ = clubs.Delete(ctx, club.ID) })

	// Same coordinator, second club: rejected by the unique constraint.
	dup := *club
	dup.ID = uuid.New().String()
	if err := clubs.Create(ctx, &dup); !errors.Is(err, ErrCoordinatorHasClub) {
		t.Fatalf("duplicate coordinator = %v, want ErrCoordinatorHasClub", err)
	}

	event := &model.Event{
		ID:                   uuid.New().String(),
		Title:                "Weekend Blitz",
		ClubID:               club.ID,
		EventDate:            time.Now().Add(48 * time.Hour),
		RegistrationDeadline: time.Now().Add(24 * time.Hour),
		Category:             model.CategoryOther,
		MaxParticipants:      1,
		CreatedBy:            club.CoordinatorID,
		IsApproved:           true,
		IsActive:             true,
		CreatedAt:            time.Now().UTC(),
	}
	if err := events.Create(ctx, event); err != nil {
		t.Fatalf("create event: %v", err)
	}
	t.Cleanup(func() { _ = events.Delete(ctx, event.ID) })

	student := uuid.New().String()
	reg, err := regs.Register(ctx, event.ID, student, "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", reg.Status)
	}
	if _, err := regs.Register(ctx, event.ID, student, ""); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("duplicate = %v, want ErrAlreadyRegistered", err)
	}

	if _, err := regs.UpdateStatus(ctx, reg.ID, model.StatusConfirmed); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := regs.Register(ctx, event.ID, uuid.New().String(), ""); !errors.Is(err, ErrEventFull) {
		t.Errorf("over capacity = %v, want ErrEventFull", err)
	}

	// Cancelled rows don't block re-registration, but reviving the
	// old row while a live one exists hits the partial unique index.
	if _, err := regs.UpdateStatus(ctx, reg.ID, model.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	second, err := regs.Register(ctx, event.ID, student, "")
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if _, err := regs.UpdateStatus(ctx, reg.ID, model.StatusPending); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("revive = %v, want ErrAlreadyRegistered", err)
	}
	if err := regs.Delete(ctx, second.ID); err != nil {
		t.Fatalf("delete registration: %v", err)
	}
}

func TestPostgresClubDeleteClearsCoordinator(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	clubs := NewPostgresClubs(pool)
	club := &model.Club{
		ID:            uuid.New().String(),
		Name:          "Drama Club " + uuid.New().String()[:8],
		Category:      model.CategoryArts,
		CoordinatorID: uuid.New().String(),
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := clubs.Create(ctx, club); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := clubs.Delete(ctx, club.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Coordinator is free to create again.
	club.ID = uuid.New().String()
	if err := clubs.Create(ctx, club); err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if err := clubs.Delete(ctx, club.ID); err != nil {
		t.Fatalf("cleanup delete: %v", err)
	}
}
