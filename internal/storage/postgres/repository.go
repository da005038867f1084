package postgres

import (
	"context"
	"fmt"

	"github.com/Togather-Foundation/listings/internal/domain/events"
	"github.com/Togather-Foundation/listings/internal/domain/users"
	"github.com/Togather-Foundation/listings/internal/domain/venues"
	"github.com/Togather-Foundation/listings/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ storage.Repository = (*Repository)(nil)

// Repository implements storage.Repository with a PostgreSQL backend
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Users() users.Repository {
	return &UserRepository{db: r.pool}
}

func (r *Repository) Venues() venues.Repository {
	return &VenueRepository{db: r.pool}
}

func (r *Repository) Events() events.Repository {
	return &EventRepository{db: r.pool}
}

// Ping checks that the database answers.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
