package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Togather-Foundation/listings/internal/domain/events"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type EventRepository struct {
	db queryer
}

const eventColumns = `id, title, description, date_time, pricing_min::text, pricing_max::text,
       map, image, COALESCE(organizer_id, ''), venue_id, created_at, updated_at`

// Create inserts the event as given. venue_id is not checked against venues.
func (r *EventRepository) Create(ctx context.Context, rec events.Record) (*events.Event, error) {
	row := r.db.QueryRow(ctx, `
INSERT INTO events (id, title, description, date_time, pricing_min, pricing_max, map, image, organizer_id, venue_id)
VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8, NULLIF($9, ''), $10)
RETURNING `+eventColumns,
		rec.ID, rec.Title, rec.Description, rec.DateTime,
		rec.Pricing.Min.String(), rec.Pricing.Max.String(),
		rec.Map, rec.Image, rec.OrganizerID, rec.VenueID,
	)
	event, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) List(ctx context.Context) ([]events.Event, error) {
	rows, err := r.db.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date_time ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (*events.Event, error) {
	row := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// Update overwrites the mutable columns. organizer_id is never changed.
func (r *EventRepository) Update(ctx context.Context, rec events.Record) (*events.Event, error) {
	row := r.db.QueryRow(ctx, `
UPDATE events
   SET title = $2, description = $3, date_time = $4,
       pricing_min = $5::numeric, pricing_max = $6::numeric,
       map = $7, image = $8, venue_id = $9, updated_at = NOW()
 WHERE id = $1
RETURNING `+eventColumns,
		rec.ID, rec.Title, rec.Description, rec.DateTime,
		rec.Pricing.Min.String(), rec.Pricing.Max.String(),
		rec.Map, rec.Image, rec.VenueID,
	)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var (
		e                events.Event
		minText, maxText string
	)
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.DateTime, &minText, &maxText,
		&e.Map, &e.Image, &e.OrganizerID, &e.VenueID, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if e.Pricing.Min, err = decimal.NewFromString(minText); err != nil {
		return nil, fmt.Errorf("parse pricing_min %q: %w", minText, err)
	}
	if e.Pricing.Max, err = decimal.NewFromString(maxText); err != nil {
		return nil, fmt.Errorf("parse pricing_max %q: %w", maxText, err)
	}
	e.DateTime = e.DateTime.UTC()
	return &e, nil
}
