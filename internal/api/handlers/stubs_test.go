package handlers

import (
	"context"
	"io"
	"sync"

	"github.com/Togather-Foundation/listings/internal/auth"
	"github.com/Togather-Foundation/listings/internal/domain/events"
	"github.com/Togather-Foundation/listings/internal/domain/users"
	"github.com/Togather-Foundation/listings/internal/domain/venues"
)

type stubUsers struct {
	registerFn     func(ctx context.Context, params users.RegisterParams) (auth.Claims, error)
	authenticateFn func(ctx context.Context, email, password string) (auth.Claims, error)
	getByIDFn      func(ctx context.Context, id string) (auth.Claims, error)
}

func (s stubUsers) Register(ctx context.Context, params users.RegisterParams) (auth.Claims, error) {
	return s.registerFn(ctx, params)
}

func (s stubUsers) Authenticate(ctx context.Context, email, password string) (auth.Claims, error) {
	return s.authenticateFn(ctx, email, password)
}

func (s stubUsers) GetByID(ctx context.Context, id string) (auth.Claims, error) {
	return s.getByIDFn(ctx, id)
}

type stubTokens struct {
	issueFn func(claims auth.Claims) (string, error)
}

func (s stubTokens) Issue(claims auth.Claims) (string, error) {
	return s.issueFn(claims)
}

type stubVenues struct {
	createFn func(ctx context.Context, params venues.CreateParams) (*venues.Venue, error)
	listFn   func(ctx context.Context) ([]venues.Venue, error)
	getFn    func(ctx context.Context, id string) (*venues.Venue, error)
	updateFn func(ctx context.Context, id string, params venues.UpdateParams) (*venues.Venue, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s stubVenues) Create(ctx context.Context, params venues.CreateParams) (*venues.Venue, error) {
	return s.createFn(ctx, params)
}

func (s stubVenues) List(ctx context.Context) ([]venues.Venue, error) {
	return s.listFn(ctx)
}

func (s stubVenues) Get(ctx context.Context, id string) (*venues.Venue, error) {
	return s.getFn(ctx, id)
}

func (s stubVenues) Update(ctx context.Context, id string, params venues.UpdateParams) (*venues.Venue, error) {
	return s.updateFn(ctx, id, params)
}

func (s stubVenues) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubEvents struct {
	createFn func(ctx context.Context, params events.CreateParams, callerID string) (*events.Event, error)
	listFn   func(ctx context.Context) ([]events.Event, error)
	getFn    func(ctx context.Context, id string) (*events.Event, error)
	updateFn func(ctx context.Context, id string, params events.UpdateParams, callerID string) (*events.Event, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s stubEvents) Create(ctx context.Context, params events.CreateParams, callerID string) (*events.Event, error) {
	return s.createFn(ctx, params, callerID)
}

func (s stubEvents) List(ctx context.Context) ([]events.Event, error) {
	return s.listFn(ctx)
}

func (s stubEvents) Get(ctx context.Context, id string) (*events.Event, error) {
	return s.getFn(ctx, id)
}

func (s stubEvents) Update(ctx context.Context, id string, params events.UpdateParams, callerID string) (*events.Event, error) {
	return s.updateFn(ctx, id, params, callerID)
}

func (s stubEvents) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

// recordingImages keeps saved payloads in memory.
type recordingImages struct {
	mu      sync.Mutex
	saved   map[string][]byte
	removed []string
	saveErr error
}

func newRecordingImages() *recordingImages {
	return &recordingImages{saved: make(map[string][]byte)}
}

func (s *recordingImages) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := "/uploads/" + filename
	s.saved[ref] = data
	return ref, nil
}

func (s *recordingImages) Remove(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, ref)
	return nil
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}
