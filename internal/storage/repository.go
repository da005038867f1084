package storage

import (
	"context"

	"github.com/Togather-Foundation/listings/internal/domain/events"
	"github.com/Togather-Foundation/listings/internal/domain/users"
	"github.com/Togather-Foundation/listings/internal/domain/venues"
)

// Repository groups data access by domain.
type Repository interface {
	Users() users.Repository
	Venues() venues.Repository
	Events() events.Repository
	Ping(ctx context.Context) error
}
