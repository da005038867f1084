package venues

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Togather-Foundation/listings/internal/domain/ids"
	"github.com/Togather-Foundation/listings/internal/validation"
	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "venues").Logger(),
	}
}

// CreateParams is the payload for a new venue.
type CreateParams struct {
	Name     string   `json:"name" validate:"required"`
	Capacity int      `json:"capacity" validate:"required,min=1,max=2147483647"`
	Location Location `json:"location"`
}

// LocationPatch carries the location fields of a partial update.
type LocationPatch struct {
	Town       *string `json:"town"`
	StreetName *string `json:"streetName"`
}

// UpdateParams is a partial update; nil fields are left unchanged.
type UpdateParams struct {
	Name     *string        `json:"name"`
	Capacity *int           `json:"capacity"`
	Location *LocationPatch `json:"location"`
}

func (p CreateParams) normalized() CreateParams {
	p.Name = strings.TrimSpace(p.Name)
	p.Location.Town = strings.TrimSpace(p.Location.Town)
	p.Location.StreetName = strings.TrimSpace(p.Location.StreetName)
	return p
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Venue, error) {
	params = params.normalized()
	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate venue id: %w", err)
	}

	venue, err := s.repo.Create(ctx, Record{
		ID:       id,
		Name:     params.Name,
		Capacity: params.Capacity,
		Location: params.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("create venue: %w", err)
	}

	s.logger.Info().Str("venue_id", venue.ID).Msg("venue created")
	return venue, nil
}

func (s *Service) List(ctx context.Context) ([]Venue, error) {
	venues, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	if venues == nil {
		venues = []Venue{}
	}
	return venues, nil
}

// Get returns the venue with the given id. Malformed ids are reported as not found.
func (s *Service) Get(ctx context.Context, id string) (*Venue, error) {
	if !ids.IsULID(id) {
		return nil, ErrNotFound
	}
	venue, err := s.repo.Get(ctx, ids.Normalize(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	return venue, nil
}

// Update merges the supplied fields into the stored venue and re-validates the result.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Venue, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := CreateParams{
		Name:     current.Name,
		Capacity: current.Capacity,
		Location: current.Location,
	}
	if params.Name != nil {
		merged.Name = *params.Name
	}
	if params.Capacity != nil {
		merged.Capacity = *params.Capacity
	}
	if params.Location != nil {
		if params.Location.Town != nil {
			merged.Location.Town = *params.Location.Town
		}
		if params.Location.StreetName != nil {
			merged.Location.StreetName = *params.Location.StreetName
		}
	}

	merged = merged.normalized()
	if err := validation.Struct(merged); err != nil {
		return nil, err
	}

	venue, err := s.repo.Update(ctx, Record{
		ID:       current.ID,
		Name:     merged.Name,
		Capacity: merged.Capacity,
		Location: merged.Location,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update venue: %w", err)
	}

	s.logger.Info().Str("venue_id", venue.ID).Msg("venue updated")
	return venue, nil
}

// Delete removes the venue. Events that reference it are left untouched.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !ids.IsULID(id) {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, ids.Normalize(id)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete venue: %w", err)
	}

	s.logger.Info().Str("venue_id", id).Msg("venue deleted")
	return nil
}
