package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Togather-Foundation/listings/internal/domain/venues"
	"github.com/jackc/pgx/v5"
)

type VenueRepository struct {
	db queryer
}

const venueColumns = `id, name, capacity, town, street_name, created_at, updated_at`

func (r *VenueRepository) Create(ctx context.Context, rec venues.Record) (*venues.Venue, error) {
	row := r.db.QueryRow(ctx, `
INSERT INTO venues (id, name, capacity, town, street_name)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+venueColumns,
		rec.ID, rec.Name, rec.Capacity, rec.Location.Town, rec.Location.StreetName,
	)
	venue, err := scanVenue(row)
	if err != nil {
		return nil, fmt.Errorf("insert venue: %w", err)
	}
	return venue, nil
}

func (r *VenueRepository) List(ctx context.Context) ([]venues.Venue, error) {
	rows, err := r.db.Query(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var out []venues.Venue
	for rows.Next() {
		venue, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		out = append(out, *venue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate venues: %w", err)
	}
	return out, nil
}

func (r *VenueRepository) Get(ctx context.Context, id string) (*venues.Venue, error) {
	row := r.db.QueryRow(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = $1`, id)
	venue, err := scanVenue(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, venues.ErrNotFound
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	return venue, nil
}

func (r *VenueRepository) Update(ctx context.Context, rec venues.Record) (*venues.Venue, error) {
	row := r.db.QueryRow(ctx, `
UPDATE venues
   SET name = $2, capacity = $3, town = $4, street_name = $5, updated_at = NOW()
 WHERE id = $1
RETURNING `+venueColumns,
		rec.ID, rec.Name, rec.Capacity, rec.Location.Town, rec.Location.StreetName,
	)
	venue, err := scanVenue(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, venues.ErrNotFound
		}
		return nil, fmt.Errorf("update venue: %w", err)
	}
	return venue, nil
}

func (r *VenueRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete venue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return venues.ErrNotFound
	}
	return nil
}

func scanVenue(row pgx.Row) (*venues.Venue, error) {
	var v venues.Venue
	if err := row.Scan(&v.ID, &v.Name, &v.Capacity, &v.Location.Town, &v.Location.StreetName, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}
