package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/clubevents/internal/model"
)

// PostgresEvents is the pgx-backed EventStore.
type PostgresEvents struct {
	db *pgxpool.Pool
}

// NewPostgresEvents constructs a PostgresEvents.
func NewPostgresEvents(db *pgxpool.Pool) *PostgresEvents {
	return &PostgresEvents{db: db}
}

const eventColumns = `id, title, description, club_id, event_date, event_time,
	registration_deadline, venue, category, max_participants, requirements,
	created_by, is_approved, is_active, created_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.ClubID, &e.EventDate, &e.EventTime,
		&e.RegistrationDeadline, &e.Venue, &e.Category, &e.MaxParticipants, &e.Requirements,
		&e.CreatedBy, &e.IsApproved, &e.IsActive, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}

// Create inserts a new event.
func (r *PostgresEvents) Create(ctx context.Context, event *model.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		event.ID, event.Title, event.Description, event.ClubID, event.EventDate, event.EventTime,
		event.RegistrationDeadline, event.Venue, event.Category, event.MaxParticipants,
		event.Requirements, event.CreatedBy, event.IsApproved, event.IsActive, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns a single event or ErrNotFound.
func (r *PostgresEvents) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// Update persists mutable event fields.
func (r *PostgresEvents) Update(ctx context.Context, event *model.Event) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE events
		 SET title = $2, description = $3, event_date = $4, event_time = $5,
		     registration_deadline = $6, venue = $7, category = $8,
		     max_participants = $9, requirements = $10, is_active = $11
		 WHERE id = $1`,
		event.ID, event.Title, event.Description, event.EventDate, event.EventTime,
		event.RegistrationDeadline, event.Venue, event.Category,
		event.MaxParticipants, event.Requirements, event.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event and its registrations.
func (r *PostgresEvents) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `DELETE FROM registrations WHERE event_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registrations: %w", err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if ct.RowsAffected() == 0 {
		err = ErrNotFound
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SetApproval flips the approval flag and returns the updated event.
func (r *PostgresEvents) SetApproval(ctx context.Context, id string, approved bool) (*model.Event, error) {
	return scanEvent(r.db.QueryRow(ctx,
		`UPDATE events SET is_approved = $2 WHERE id = $1 RETURNING `+eventColumns,
		id, approved))
}

// List returns events matching the filter, most recent event date first.
func (r *PostgresEvents) List(ctx context.Context, f EventFilter) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events`
	var conds []string
	var args []any
	if f.IsApproved != nil {
		args = append(args, *f.IsApproved)
		conds = append(conds, fmt.Sprintf("is_approved = $%d", len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if f.ClubID != "" {
		args = append(args, f.ClubID)
		conds = append(conds, fmt.Sprintf("club_id = $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY event_date DESC"

	return r.queryEvents(ctx, q, args...)
}

// ListByCreator returns events created by the given user.
func (r *PostgresEvents) ListByCreator(ctx context.Context, userID string) ([]model.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE created_by = $1 ORDER BY event_date DESC`,
		userID)
}

func (r *PostgresEvents) queryEvents(ctx context.Context, q string, args ...any) ([]model.Event, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
