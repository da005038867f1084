// Package internal documents the listings server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, error responses, and routing
// - domain: users, venues and events with their services
// - storage: repositories over Postgres (pgx) plus embedded migrations
// - uploads: event image files on local disk
// - auth, audit, config, metrics, telemetry: shared infrastructure
// - apperr, validation, sanitize: error kinds and input hygiene
//
// Code in internal/ is not meant for external import.
package internal
