// Package api assembles the HTTP surface: routes, per-route guards and the
// middleware chain shared by every request.
package api

import (
	"context"
	"net/http"

	"github.com/Togather-Foundation/listings/internal/api/handlers"
	"github.com/Togather-Foundation/listings/internal/api/middleware"
	"github.com/Togather-Foundation/listings/internal/audit"
	"github.com/Togather-Foundation/listings/internal/auth"
	"github.com/Togather-Foundation/listings/internal/config"
	"github.com/Togather-Foundation/listings/internal/domain/events"
	"github.com/Togather-Foundation/listings/internal/domain/users"
	"github.com/Togather-Foundation/listings/internal/domain/venues"
	"github.com/Togather-Foundation/listings/internal/metrics"
	"github.com/Togather-Foundation/listings/internal/storage"
	"github.com/Togather-Foundation/listings/internal/uploads"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Repo    storage.Repository
	Tokens  *auth.TokenIssuer
	Uploads *uploads.Store
	Logger  zerolog.Logger
	Build   BuildInfo
}

// NewRouter builds the full handler. ctx bounds background work started
// for the router (rate limiter cleanup).
func NewRouter(ctx context.Context, cfg config.Config, deps Deps) http.Handler {
	env := cfg.Environment
	logger := deps.Logger

	userService := users.NewService(deps.Repo.Users(), logger)
	venueService := venues.NewService(deps.Repo.Venues(), logger)

	var eventOpts []events.Option
	var images handlers.ImageStore
	if deps.Uploads != nil {
		eventOpts = append(eventOpts, events.WithImageRemover(deps.Uploads))
		images = deps.Uploads
	}
	eventService := events.NewService(deps.Repo.Events(), venueService, logger, eventOpts...)

	authHandler := handlers.NewAuthHandler(userService, deps.Tokens, env)
	usersHandler := handlers.NewUsersHandler(userService, env)
	venuesHandler := handlers.NewVenuesHandler(venueService, env)
	eventsHandler := handlers.NewEventsHandler(eventService, images, env)
	healthHandler := handlers.NewHealthHandler(deps.Repo)

	authenticated := middleware.Authenticate(deps.Tokens, env)
	organizer := func(h http.HandlerFunc) http.Handler {
		return authenticated(middleware.RequireRole(auth.RoleOrganizer, env)(h))
	}
	jsonBody := middleware.RequestSize(middleware.JSONMaxBodySize, env)
	formBody := middleware.RequestSize(cfg.Uploads.MaxBytes+middleware.JSONMaxBodySize, env)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", handlers.Root)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /version", VersionHandler(deps.Build))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /openapi.json", OpenAPIHandler())

	mux.Handle("POST /auth/signup", jsonBody(http.HandlerFunc(authHandler.Signup)))
	mux.Handle("POST /auth/login", jsonBody(http.HandlerFunc(authHandler.Login)))
	mux.Handle("GET /auth/verify", authenticated(http.HandlerFunc(authHandler.Verify)))

	mux.Handle("GET /user/profile", authenticated(http.HandlerFunc(usersHandler.Profile)))
	mux.Handle("GET /user/{id}", authenticated(http.HandlerFunc(usersHandler.Get)))

	mux.HandleFunc("GET /venues", venuesHandler.List)
	mux.HandleFunc("GET /venues/{id}", venuesHandler.Get)
	mux.Handle("POST /venues", jsonBody(organizer(venuesHandler.Create)))
	mux.Handle("PUT /venues/{id}", jsonBody(organizer(venuesHandler.Update)))
	mux.Handle("DELETE /venues/{id}", organizer(venuesHandler.Delete))

	mux.HandleFunc("GET /events", eventsHandler.List)
	mux.HandleFunc("GET /events/{id}", eventsHandler.Get)
	mux.Handle("POST /events", formBody(organizer(eventsHandler.Create)))
	mux.Handle("PUT /events/{id}", formBody(organizer(eventsHandler.Update)))
	mux.Handle("DELETE /events/{id}", organizer(eventsHandler.Delete))

	if deps.Uploads != nil {
		uploadsHandler := handlers.NewUploadsHandler(deps.Uploads, env)
		mux.HandleFunc("GET /uploads/{name}", uploadsHandler.Serve)
	}

	limiter := middleware.NewRateLimiter(ctx, cfg.RateLimit, env)

	var handler http.Handler = mux
	handler = audit.Middleware(audit.NewLogger(logger))(handler)
	handler = limiter.Middleware(handler)
	handler = middleware.CORS(cfg.CORS)(handler)
	handler = middleware.SecurityHeaders(!cfg.IsDevelopment())(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(handler)
	handler = middleware.CorrelationID(logger)(handler)
	handler = middleware.Tracing(handler)
	return handler
}
