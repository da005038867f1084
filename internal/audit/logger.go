// Package audit records who changed which listing. Entries go through
// zerolog under a dedicated "audit" object so they can be filtered out of the
// regular request log.
package audit

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/Togather-Foundation/listings/internal/api/middleware"
	"github.com/rs/zerolog"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry is a single audit record.
type Entry struct {
	Timestamp    time.Time         `json:"timestamp"`
	Action       string            `json:"action"`
	UserID       string            `json:"user_id"`
	Role         string            `json:"role,omitempty"`
	ResourceType string            `json:"resource_type,omitempty"`
	ResourceID   string            `json:"resource_id,omitempty"`
	IPAddress    string            `json:"ip_address"`
	Status       string            `json:"status"`
	Details      map[string]string `json:"details,omitempty"`
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e Entry) MarshalZerologObject(ev *zerolog.Event) {
	ev.Time("timestamp", e.Timestamp).
		Str("action", e.Action).
		Str("user_id", e.UserID).
		Str("ip_address", e.IPAddress).
		Str("status", e.Status)
	if e.Role != "" {
		ev.Str("role", e.Role)
	}
	if e.ResourceType != "" {
		ev.Str("resource_type", e.ResourceType)
	}
	if e.ResourceID != "" {
		ev.Str("resource_id", e.ResourceID)
	}
	if len(e.Details) > 0 {
		dict := zerolog.Dict()
		for k, v := range e.Details {
			dict.Str(k, v)
		}
		ev.Dict("details", dict)
	}
}

type Logger struct {
	out zerolog.Logger
	now func() time.Time
}

func NewLogger(out zerolog.Logger) *Logger {
	return &Logger{
		out: out.With().Str("component", "audit").Logger(),
		now: time.Now,
	}
}

func (l *Logger) Log(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}
	ev := l.out.Info()
	if entry.Status == StatusFailure {
		ev = l.out.Warn()
	}
	ev.Object("audit", entry).Msg("audit")
}

// LogFromRequest fills the caller from the verified token claims and the
// client address from the connection.
func (l *Logger) LogFromRequest(r *http.Request, action, resourceType, resourceID, status string, details map[string]string) {
	entry := Entry{
		Action:       action,
		UserID:       "anonymous",
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    remoteIP(r),
		Status:       status,
		Details:      details,
	}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		entry.UserID = claims.ID
		entry.Role = string(claims.Role)
	}
	l.Log(entry)
}

// remoteIP uses the connection address only.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type contextKey struct{}

func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the request's audit logger, or one that discards
// everything when none was installed.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok && logger != nil {
		return logger
	}
	return NewLogger(zerolog.Nop())
}

// Middleware installs logger on every request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), logger)))
		})
	}
}
