package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Togather-Foundation/listings/internal/apperr"
	"github.com/Togather-Foundation/listings/internal/domain/venues"
	"github.com/shopspring/decimal"
)

var ErrNotFound = apperr.New(apperr.ErrNotFound, "Event not found")

// Pricing is the ticket price range of an event. Max is not required to be
// greater than Min.
type Pricing struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

type pricingJSON struct {
	Min json.Number `json:"min"`
	Max json.Number `json:"max"`
}

// MarshalJSON writes both bounds as JSON numbers rather than strings.
func (p Pricing) MarshalJSON() ([]byte, error) {
	return json.Marshal(pricingJSON{
		Min: json.Number(p.Min.String()),
		Max: json.Number(p.Max.String()),
	})
}

func (p *Pricing) UnmarshalJSON(data []byte) error {
	var raw struct {
		Min decimal.Decimal `json:"min"`
		Max decimal.Decimal `json:"max"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Min, p.Max = raw.Min, raw.Max
	return nil
}

// Event is a listed event. Venue is populated by the service and is nil when
// the referenced venue no longer exists.
type Event struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	DateTime    time.Time     `json:"dateTime"`
	Pricing     Pricing       `json:"pricing"`
	Map         string        `json:"map,omitempty"`
	Image       string        `json:"image,omitempty"`
	OrganizerID string        `json:"organizer,omitempty"`
	VenueID     string        `json:"venueId"`
	Venue       *venues.Venue `json:"venue"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Record is the persisted form of an event.
type Record struct {
	ID          string
	Title       string
	Description string
	DateTime    time.Time
	Pricing     Pricing
	Map         string
	Image       string
	OrganizerID string
	VenueID     string
}

// Repository persists events. It does not check that VenueID refers to an
// existing venue.
type Repository interface {
	Create(ctx context.Context, record Record) (*Event, error)
	List(ctx context.Context) ([]Event, error)
	Get(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, record Record) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// VenueLookup resolves venue references. venues.Service satisfies it.
type VenueLookup interface {
	Get(ctx context.Context, id string) (*venues.Venue, error)
}

// ImageRemover deletes stored images that are no longer referenced.
type ImageRemover interface {
	Stored(ref string) bool
	Remove(ref string) error
}
