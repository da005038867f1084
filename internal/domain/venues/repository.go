package venues

import (
	"context"
	"time"

	"github.com/Togather-Foundation/listings/internal/apperr"
)

var ErrNotFound = apperr.New(apperr.ErrNotFound, "Venue not found")

// Location is where a venue sits.
type Location struct {
	Town       string `json:"town" validate:"required,min=1"`
	StreetName string `json:"streetName" validate:"required,min=1"`
}

type Venue struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Location  Location  `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Record is the persisted form of a venue, minus timestamps.
type Record struct {
	ID       string
	Name     string
	Capacity int
	Location Location
}

type Repository interface {
	Create(ctx context.Context, record Record) (*Venue, error)
	List(ctx context.Context) ([]Venue, error)
	Get(ctx context.Context, id string) (*Venue, error)
	Update(ctx context.Context, record Record) (*Venue, error)
	Delete(ctx context.Context, id string) error
}
