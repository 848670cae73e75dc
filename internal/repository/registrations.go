package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/clubevents/internal/model"
)

// PostgresRegistrations is the pgx-backed RegistrationStore.
type PostgresRegistrations struct {
	db *pgxpool.Pool
}

// NewPostgresRegistrations constructs a PostgresRegistrations.
func NewPostgresRegistrations(db *pgxpool.Pool) *PostgresRegistrations {
	return &PostgresRegistrations{db: db}
}

const registrationColumns = `id, event_id, student_id, status, comments, registration_date`

func scanRegistration(row pgx.Row) (*model.Registration, error) {
	var reg model.Registration
	err := row.Scan(&reg.ID, &reg.EventID, &reg.StudentID, &reg.Status,
		&reg.Comments, &reg.RegistrationDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	return &reg, nil
}

// Register admits a student to an event inside a single transaction.
//
// The event row is locked with SELECT ... FOR UPDATE so the gating
// checks and the insert cannot be interleaved with another caller's
// insert: without the lock, two transactions read the same
// confirmed/attended count before either commits, and both admit.
// Concurrent registrations for the same event serialize on the row
// lock; the duplicate and capacity checks below therefore see every
// previously committed registration.
//
// The partial unique index on (event_id, student_id) for non-cancelled
// rows backs up the duplicate pre-check, so even a path that skips the
// lock cannot create a duplicate pair.
func (r *PostgresRegistrations) Register(ctx context.Context, eventID, studentID, comments string) (*model.Registration, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var (
		isApproved, isActive bool
		deadline             time.Time
		maxParticipants      int
	)
	err = tx.QueryRow(ctx,
		`SELECT is_approved, is_active, registration_deadline, max_participants
		 FROM events
		 WHERE id = $1
		 FOR UPDATE`,
		eventID,
	).Scan(&isApproved, &isActive, &deadline, &maxParticipants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return nil, err
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	switch {
	case !isApproved:
		err = ErrEventNotApproved
		return nil, err
	case !isActive:
		err = ErrEventInactive
		return nil, err
	case !time.Now().Before(deadline):
		err = ErrDeadlinePassed
		return nil, err
	}

	var dupCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations
		 WHERE event_id = $1 AND student_id = $2 AND status <> 'cancelled'`,
		eventID, studentID,
	).Scan(&dupCount)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if dupCount > 0 {
		err = ErrAlreadyRegistered
		return nil, err
	}

	// Only confirmed and attended registrations occupy slots; a burst
	// of pending ones may exceed capacity until they are confirmed.
	var taken int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations
		 WHERE event_id = $1 AND status IN ('confirmed', 'attended')`,
		eventID,
	).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	if taken >= maxParticipants {
		err = ErrEventFull
		return nil, err
	}

	reg := &model.Registration{
		ID:               uuid.New().String(),
		EventID:          eventID,
		StudentID:        studentID,
		Status:           model.StatusPending,
		Comments:         comments,
		RegistrationDate: time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO registrations (`+registrationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.ID, reg.EventID, reg.StudentID, reg.Status, reg.Comments, reg.RegistrationDate,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			err = ErrAlreadyRegistered
			return nil, err
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return reg, nil
}

// GetByID returns a single registration or ErrNotFound.
func (r *PostgresRegistrations) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	return scanRegistration(r.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id))
}

// UpdateStatus sets the status and returns the updated registration.
func (r *PostgresRegistrations) UpdateStatus(ctx context.Context, id string, status model.RegistrationStatus) (*model.Registration, error) {
	reg, err := scanRegistration(r.db.QueryRow(ctx,
		`UPDATE registrations SET status = $2 WHERE id = $1 RETURNING `+registrationColumns,
		id, status))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Reviving a cancelled row would collide with a live
			// registration for the same (event, student).
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	return reg, nil
}

// Delete removes a registration, freeing its capacity slot.
func (r *PostgresRegistrations) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns registrations matching the filter, newest first.
func (r *PostgresRegistrations) List(ctx context.Context, f RegistrationFilter) ([]model.Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM registrations`
	var conds []string
	var args []any
	if f.EventID != "" {
		args = append(args, f.EventID)
		conds = append(conds, fmt.Sprintf("event_id = $%d", len(args)))
	}
	if f.StudentID != "" {
		args = append(args, f.StudentID)
		conds = append(conds, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY registration_date DESC"

	return r.queryRegistrations(ctx, q, args...)
}

// ListByEvents returns registrations for any of the given events.
func (r *PostgresRegistrations) ListByEvents(ctx context.Context, eventIDs []string) ([]model.Registration, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	return r.queryRegistrations(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE event_id = ANY($1)
		 ORDER BY registration_date DESC`,
		eventIDs)
}

func (r *PostgresRegistrations) queryRegistrations(ctx context.Context, q string, args ...any) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}
