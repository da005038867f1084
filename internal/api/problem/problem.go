// Package problem writes error responses. Every handler and middleware
// reports failures through Write or Error so the status mapping and
// logging stay in one place.
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/Togather-Foundation/listings/internal/apperr"
	"github.com/rs/zerolog"
)

const contentType = "application/json"

// Body is the JSON error payload.
type Body struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type Option func(*Body)

func WithField(field string) Option {
	return func(b *Body) {
		b.Field = field
	}
}

func WithDetail(detail string) Option {
	return func(b *Body) {
		b.Detail = detail
	}
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error classifies err and writes the matching response. Internal errors
// only expose their text in development and test environments.
func Error(w http.ResponseWriter, r *http.Request, err error, env string) {
	status := StatusFor(err)

	message, field, ok := apperr.Message(err)
	if !ok || status == http.StatusInternalServerError {
		message = http.StatusText(status)
		field = ""
	}

	var opts []Option
	if field != "" {
		opts = append(opts, WithField(field))
	}
	Write(w, r, status, message, err, env, opts...)
}

// Write sends a {message} body with the given status and logs err through
// the request logger: 5xx at error level, 4xx at warn.
func Write(w http.ResponseWriter, r *http.Request, status int, message string, err error, env string, opts ...Option) {
	body := Body{Message: message}
	for _, opt := range opts {
		opt(&body)
	}

	if body.Detail == "" && err != nil && status >= 500 && (env == "development" || env == "test") {
		body.Detail = err.Error()
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		var event *zerolog.Event
		if status >= 500 {
			event = logger.Error()
		} else {
			event = logger.Warn()
		}
		event.
			Err(err).
			Int("status", status).
			Str("kind", apperr.KindOf(err).String()).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(message)
	}

	payload, marshalErr := json.Marshal(body)
	if marshalErr != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
