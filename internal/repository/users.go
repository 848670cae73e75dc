package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/clubevents/internal/model"
)

// PostgresUsers is the pgx-backed UserStore.
type PostgresUsers struct {
	db *pgxpool.Pool
}

// NewPostgresUsers constructs a PostgresUsers.
func NewPostgresUsers(db *pgxpool.Pool) *PostgresUsers {
	return &PostgresUsers{db: db}
}

// ListCoordinators returns users with the coordinator role together
// with their managed club id, if any.
func (r *PostgresUsers) ListCoordinators(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, email, role, COALESCE(managed_club_id::text, '')
		 FROM users
		 WHERE role = 'coordinator'
		 ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list coordinators: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.ManagedClubID); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
