package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Togather-Foundation/listings/internal/domain/events"
	"github.com/Togather-Foundation/listings/internal/domain/users"
	"github.com/Togather-Foundation/listings/internal/domain/venues"
	"github.com/Togather-Foundation/listings/internal/storage"
)

var _ storage.Repository = (*memStore)(nil)

// memStore is an in-memory storage.Repository for router tests.
type memStore struct {
	mu      sync.Mutex
	users   map[string]users.User
	venues  map[string]venues.Venue
	events  map[string]events.Event
	pingErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]users.User),
		venues: make(map[string]venues.Venue),
		events: make(map[string]events.Event),
	}
}

func (s *memStore) Users() users.Repository   { return memUsers{s} }
func (s *memStore) Venues() venues.Repository { return memVenues{s} }
func (s *memStore) Events() events.Repository { return memEvents{s} }

func (s *memStore) Ping(context.Context) error { return s.pingErr }

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, p users.CreateParams) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == p.Email {
			return nil, users.ErrEmailTaken
		}
	}
	u := users.User{ID: p.ID, Email: p.Email, PasswordHash: p.PasswordHash, Name: p.Name, Role: p.Role, CreatedAt: time.Now()}
	r.s.users[u.ID] = u
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (r memUsers) GetByID(_ context.Context, id string) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		return &u, nil
	}
	return nil, users.ErrNotFound
}

type memVenues struct{ s *memStore }

func (r memVenues) Create(_ context.Context, rec venues.Record) (*venues.Venue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	v := venues.Venue{ID: rec.ID, Name: rec.Name, Capacity: rec.Capacity, Location: rec.Location, CreatedAt: now, UpdatedAt: now}
	r.s.venues[v.ID] = v
	return &v, nil
}

func (r memVenues) List(context.Context) ([]venues.Venue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]venues.Venue, 0, len(r.s.venues))
	for _, v := range r.s.venues {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memVenues) Get(_ context.Context, id string) (*venues.Venue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v, ok := r.s.venues[id]; ok {
		return &v, nil
	}
	return nil, venues.ErrNotFound
}

func (r memVenues) Update(_ context.Context, rec venues.Record) (*venues.Venue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.venues[rec.ID]
	if !ok {
		return nil, venues.ErrNotFound
	}
	v.Name, v.Capacity, v.Location, v.UpdatedAt = rec.Name, rec.Capacity, rec.Location, time.Now().UTC()
	r.s.venues[v.ID] = v
	return &v, nil
}

func (r memVenues) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.venues[id]; !ok {
		return venues.ErrNotFound
	}
	delete(r.s.venues, id)
	return nil
}

type memEvents struct{ s *memStore }

func recordToEvent(rec events.Record) events.Event {
	return events.Event{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		DateTime:    rec.DateTime,
		Pricing:     rec.Pricing,
		Map:         rec.Map,
		Image:       rec.Image,
		OrganizerID: rec.OrganizerID,
		VenueID:     rec.VenueID,
	}
}

func (r memEvents) Create(_ context.Context, rec events.Record) (*events.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e := recordToEvent(rec)
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	r.s.events[e.ID] = e
	return &e, nil
}

func (r memEvents) List(context.Context) ([]events.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]events.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out, nil
}

func (r memEvents) Get(_ context.Context, id string) (*events.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.events[id]; ok {
		return &e, nil
	}
	return nil, events.ErrNotFound
}

func (r memEvents) Update(_ context.Context, rec events.Record) (*events.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.events[rec.ID]
	if !ok {
		return nil, events.ErrNotFound
	}
	e := recordToEvent(rec)
	e.OrganizerID = current.OrganizerID
	e.CreatedAt = current.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	r.s.events[e.ID] = e
	return &e, nil
}

func (r memEvents) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return events.ErrNotFound
	}
	delete(r.s.events, id)
	return nil
}
