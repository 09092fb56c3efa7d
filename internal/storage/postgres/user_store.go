package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/linkboard/linkboard/internal/directory"
)

// UserStore reads caller identities from Postgres. Identity rows are
// provisioned outside this service; only lookups are implemented.
type UserStore struct {
	pool Pool
}

// NewUserStore constructs a UserStore over an existing pool.
func NewUserStore(pool Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Get fetches a user by ID.
func (s *UserStore) Get(ctx context.Context, id string) (directory.User, error) {
	query := `SELECT id, name, role FROM users WHERE id = $1`
	return s.scanOne(s.pool.QueryRow(ctx, query, id))
}

// GetByToken resolves a bearer token to its user.
func (s *UserStore) GetByToken(ctx context.Context, token string) (directory.User, error) {
	query := `SELECT id, name, role FROM users WHERE api_token = $1`
	return s.scanOne(s.pool.QueryRow(ctx, query, token))
}

func (s *UserStore) scanOne(row pgx.Row) (directory.User, error) {
	var user directory.User
	if err := row.Scan(&user.ID, &user.Name, &user.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.User{}, directory.ErrNotFound
		}
		return directory.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
