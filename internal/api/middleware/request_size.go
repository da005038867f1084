package middleware

import (
	"errors"
	"net/http"
)

const (
	// JSONMaxBodySize bounds plain JSON payloads.
	JSONMaxBodySize int64 = 1 << 20
)

// RequestSize caps the request body. Handlers that read past the limit get an
// *http.MaxBytesError, which IsTooLarge recognizes. Requests that announce a
// larger Content-Length are rejected before reaching the handler.
func RequestSize(maxBytes int64, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeTooLarge(w, r, env)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// IsTooLarge reports whether err came from reading past a RequestSize limit.
func IsTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
