package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Togather-Foundation/listings/internal/apperr"
	"github.com/Togather-Foundation/listings/internal/domain/ids"
	"github.com/Togather-Foundation/listings/internal/domain/venues"
	"github.com/Togather-Foundation/listings/internal/sanitize"
	"github.com/Togather-Foundation/listings/internal/validation"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// expandConcurrency bounds the number of venue lookups in flight during List.
const expandConcurrency = 8

// Prices are stored as NUMERIC(12,2).
const pricePlaces = 2

var maxPrice = decimal.RequireFromString("9999999999.99")

var (
	ErrNoFields     = apperr.ValidationError{Message: "No valid fields to update"}
	ErrUnknownVenue = apperr.ValidationError{Field: "venue", Message: "Venue not found"}
	ErrForeignImage = apperr.ValidationError{Field: "image", Message: "Stored images can only be set by uploading a file"}
)

type Service struct {
	repo   Repository
	venues VenueLookup
	images ImageRemover
	logger zerolog.Logger
}

type Option func(*Service)

// WithImageRemover makes the service delete replaced and orphaned images. It
// also stops callers from pointing an event at a stored file they did not
// upload.
func WithImageRemover(images ImageRemover) Option {
	return func(s *Service) {
		s.images = images
	}
}

func NewService(repo Repository, venues VenueLookup, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		venues: venues,
		logger: logger.With().Str("component", "events").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type PricingParams struct {
	Min *decimal.Decimal `json:"min" validate:"required"`
	Max *decimal.Decimal `json:"max" validate:"required"`
}

// CreateParams is the payload for a new event. The organizer is never part of
// it; it comes from the authenticated caller.
type CreateParams struct {
	Title       string        `json:"title" validate:"required"`
	Description string        `json:"description" validate:"required"`
	DateTime    string        `json:"dateTime" validate:"required"`
	Pricing     PricingParams `json:"pricing"`
	VenueID     string        `json:"venue" validate:"required"`
	Map         string        `json:"map"`
	Image       string        `json:"image"`

	// UploadedImage is the reference of a file stored for this request. It
	// takes precedence over Image.
	UploadedImage string `json:"-"`
}

type PricingPatch struct {
	Min *decimal.Decimal `json:"min"`
	Max *decimal.Decimal `json:"max"`
}

// UpdateParams is a partial update; nil fields are left unchanged.
type UpdateParams struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	DateTime    *string       `json:"dateTime"`
	Pricing     *PricingPatch `json:"pricing"`
	VenueID     *string       `json:"venue"`
	Map         *string       `json:"map"`
	Image       *string       `json:"image"`

	UploadedImage string `json:"-"`
}

func (p UpdateParams) empty() bool {
	pricingEmpty := p.Pricing == nil || (p.Pricing.Min == nil && p.Pricing.Max == nil)
	return p.Title == nil && p.Description == nil && p.DateTime == nil && pricingEmpty &&
		p.VenueID == nil && p.Map == nil && p.Image == nil && p.UploadedImage == ""
}

func (s *Service) Create(ctx context.Context, params CreateParams, callerID string) (*Event, error) {
	params.Title = sanitize.Text(strings.TrimSpace(params.Title))
	params.Description = sanitize.HTML(strings.TrimSpace(params.Description))
	params.VenueID = strings.TrimSpace(params.VenueID)
	params.Map = strings.TrimSpace(params.Map)
	params.Image = strings.TrimSpace(params.Image)
	if params.UploadedImage != "" {
		params.Image = params.UploadedImage
	} else if s.isStored(params.Image) {
		return nil, ErrForeignImage
	}

	if err := validation.Struct(params); err != nil {
		return nil, err
	}
	dateTime, err := ParseDateTime(params.DateTime)
	if err != nil {
		return nil, err
	}
	pricing := Pricing{Min: *params.Pricing.Min, Max: *params.Pricing.Max}
	if err := validatePricing(pricing); err != nil {
		return nil, err
	}
	if err := validateReferences(params.Map, params.Image); err != nil {
		return nil, err
	}

	venue, err := s.venues.Get(ctx, params.VenueID)
	if err != nil {
		if errors.Is(err, venues.ErrNotFound) {
			return nil, ErrUnknownVenue
		}
		return nil, fmt.Errorf("check venue: %w", err)
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate event id: %w", err)
	}

	event, err := s.repo.Create(ctx, Record{
		ID:          id,
		Title:       params.Title,
		Description: params.Description,
		DateTime:    dateTime,
		Pricing:     pricing,
		Map:         params.Map,
		Image:       params.Image,
		OrganizerID: callerID,
		VenueID:     venue.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	event.Venue = venue

	s.logger.Info().
		Str("event_id", event.ID).
		Str("venue_id", venue.ID).
		Str("organizer_id", callerID).
		Msg("event created")
	return event, nil
}

// List returns every event with its venue expanded. Each distinct venue is
// looked up once.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if len(list) == 0 {
		return []Event{}, nil
	}

	distinct := make(map[string]struct{})
	for _, e := range list {
		distinct[e.VenueID] = struct{}{}
	}

	var mu sync.Mutex
	resolved := make(map[string]*venues.Venue, len(distinct))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(expandConcurrency)
	for venueID := range distinct {
		g.Go(func() error {
			venue, err := s.lookupVenue(gctx, venueID)
			if err != nil {
				return err
			}
			mu.Lock()
			resolved[venueID] = venue
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range list {
		list[i].Venue = resolved[list[i].VenueID]
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	event, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Venue, err = s.lookupVenue(ctx, event.VenueID); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams, callerID string) (*Event, error) {
	if params.empty() {
		return nil, ErrNoFields
	}

	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	record := Record{
		ID:          current.ID,
		Title:       current.Title,
		Description: current.Description,
		DateTime:    current.DateTime,
		Pricing:     current.Pricing,
		Map:         current.Map,
		Image:       current.Image,
		OrganizerID: current.OrganizerID,
		VenueID:     current.VenueID,
	}

	if params.Title != nil {
		record.Title = sanitize.Text(strings.TrimSpace(*params.Title))
		if record.Title == "" {
			return nil, apperr.Invalid("title", "is required")
		}
	}
	if params.Description != nil {
		record.Description = sanitize.HTML(strings.TrimSpace(*params.Description))
		if record.Description == "" {
			return nil, apperr.Invalid("description", "is required")
		}
	}
	if params.DateTime != nil {
		if record.DateTime, err = ParseDateTime(*params.DateTime); err != nil {
			return nil, err
		}
	}
	if params.Pricing != nil {
		if params.Pricing.Min != nil {
			record.Pricing.Min = *params.Pricing.Min
		}
		if params.Pricing.Max != nil {
			record.Pricing.Max = *params.Pricing.Max
		}
		if err := validatePricing(record.Pricing); err != nil {
			return nil, err
		}
	}
	if params.VenueID != nil {
		record.VenueID = strings.TrimSpace(*params.VenueID)
		if record.VenueID == "" {
			return nil, apperr.Invalid("venue", "is required")
		}
	}
	if params.Map != nil {
		record.Map = strings.TrimSpace(*params.Map)
	}
	switch {
	case params.UploadedImage != "":
		record.Image = params.UploadedImage
	case params.Image != nil:
		ref := strings.TrimSpace(*params.Image)
		if ref != current.Image && s.isStored(ref) {
			return nil, ErrForeignImage
		}
		record.Image = ref
	}
	if err := validateReferences(record.Map, record.Image); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	if current.Image != "" && current.Image != updated.Image {
		s.removeImage(current.Image)
	}

	if updated.Venue, err = s.lookupVenue(ctx, updated.VenueID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("event_id", updated.ID).
		Str("caller_id", callerID).
		Msg("event updated")
	return updated, nil
}

// Delete removes the event. The referenced venue is not touched.
func (s *Service) Delete(ctx context.Context, id string) error {
	current, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, current.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	if current.Image != "" {
		s.removeImage(current.Image)
	}

	s.logger.Info().Str("event_id", current.ID).Msg("event deleted")
	return nil
}

func (s *Service) get(ctx context.Context, id string) (*Event, error) {
	if !ids.IsULID(id) {
		return nil, ErrNotFound
	}
	event, err := s.repo.Get(ctx, ids.Normalize(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// lookupVenue returns nil for a dangling reference.
func (s *Service) lookupVenue(ctx context.Context, venueID string) (*venues.Venue, error) {
	venue, err := s.venues.Get(ctx, venueID)
	if err != nil {
		if errors.Is(err, venues.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("expand venue %s: %w", venueID, err)
	}
	return venue, nil
}

// isStored reports whether ref names a file in the image store.
func (s *Service) isStored(ref string) bool {
	return s.images != nil && ref != "" && s.images.Stored(ref)
}

func (s *Service) removeImage(ref string) {
	if !s.isStored(ref) {
		return
	}
	if err := s.images.Remove(ref); err != nil {
		s.logger.Warn().Err(err).Str("image", ref).Msg("failed to remove image")
	}
}

func validatePricing(p Pricing) error {
	if err := validatePrice("pricing.min", p.Min); err != nil {
		return err
	}
	return validatePrice("pricing.max", p.Max)
}

func validatePrice(field string, v decimal.Decimal) error {
	switch {
	case v.IsNegative():
		return apperr.Invalid(field, "must not be negative")
	case v.GreaterThan(maxPrice):
		return apperr.Invalid(field, "must be at most "+maxPrice.String())
	case !v.Equal(v.Truncate(pricePlaces)):
		return apperr.Invalid(field, "must have at most 2 decimal places")
	}
	return nil
}

func validateReferences(mapRef, imageRef string) error {
	if err := validation.ValidateReference(mapRef, "map"); err != nil {
		return err
	}
	return validation.ValidateReference(imageRef, "image")
}
