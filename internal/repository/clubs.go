package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/clubevents/internal/model"
)

const pgUniqueViolation = "23505"

// PostgresClubs is the pgx-backed ClubStore.
type PostgresClubs struct {
	db *pgxpool.Pool
}

// NewPostgresClubs constructs a PostgresClubs.
func NewPostgresClubs(db *pgxpool.Pool) *PostgresClubs {
	return &PostgresClubs{db: db}
}

const clubColumns = `id, name, description, category, coordinator_id,
	contact_email, is_approved, is_active, created_at`

func scanClub(row pgx.Row) (*model.Club, error) {
	var c model.Club
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.CoordinatorID,
		&c.ContactEmail, &c.IsApproved, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan club: %w", err)
	}
	return &c, nil
}

// Create inserts the club and the coordinator's back-reference in one
// transaction. The UNIQUE constraint on coordinator_id is the safety
// net against two concurrent creates by the same coordinator.
func (r *PostgresClubs) Create(ctx context.Context, club *model.Club) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO clubs (`+clubColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		club.ID, club.Name, club.Description, club.Category, club.CoordinatorID,
		club.ContactEmail, club.IsApproved, club.IsActive, club.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrCoordinatorHasClub
		}
		return fmt.Errorf("insert club: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, role, managed_club_id)
		 VALUES ($1, 'coordinator', $2)
		 ON CONFLICT (id) DO UPDATE SET managed_club_id = EXCLUDED.managed_club_id`,
		club.CoordinatorID, club.ID,
	)
	if err != nil {
		return fmt.Errorf("set managed club: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID returns a single club or ErrNotFound.
func (r *PostgresClubs) GetByID(ctx context.Context, id string) (*model.Club, error) {
	return scanClub(r.db.QueryRow(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE id = $1`, id))
}

// GetByCoordinator returns the club managed by the user, or ErrNotFound.
func (r *PostgresClubs) GetByCoordinator(ctx context.Context, coordinatorID string) (*model.Club, error) {
	return scanClub(r.db.QueryRow(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE coordinator_id = $1`, coordinatorID))
}

// Update persists mutable club fields.
func (r *PostgresClubs) Update(ctx context.Context, club *model.Club) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE clubs
		 SET name = $2, description = $3, category = $4, contact_email = $5, is_active = $6
		 WHERE id = $1`,
		club.ID, club.Name, club.Description, club.Category, club.ContactEmail, club.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update club: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the club and clears the coordinator back-reference in
// one transaction. Events of the club are intentionally left alone.
func (r *PostgresClubs) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`UPDATE users SET managed_club_id = NULL WHERE managed_club_id = $1`, id)
	if err != nil {
		return fmt.Errorf("clear managed club: %w", err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete club: %w", err)
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

// SetApproval flips the approval flag and returns the updated club.
func (r *PostgresClubs) SetApproval(ctx context.Context, id string, approved bool) (*model.Club, error) {
	return scanClub(r.db.QueryRow(ctx,
		`UPDATE clubs SET is_approved = $2 WHERE id = $1 RETURNING `+clubColumns,
		id, approved))
}

// List returns clubs matching the filter, newest first.
func (r *PostgresClubs) List(ctx context.Context, f ClubFilter) ([]model.Club, error) {
	q := `SELECT ` + clubColumns + ` FROM clubs`
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
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	defer rows.Close()

	var clubs []model.Club
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, err
		}
		clubs = append(clubs, *c)
	}
	return clubs, rows.Err()
}
