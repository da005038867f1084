// Package handlers implements the HTTP endpoints. Handlers decode requests,
// call a domain service and hand every failure to problem.Error.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Togather-Foundation/listings/internal/api/middleware"
	"github.com/Togather-Foundation/listings/internal/api/problem"
	"github.com/Togather-Foundation/listings/internal/apperr"
	"github.com/Togather-Foundation/listings/internal/audit"
	"github.com/Togather-Foundation/listings/internal/metrics"
)

var errInvalidJSON = apperr.ValidationError{Message: "Invalid JSON body"}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps err onto a response. Reads past the body limit become 413.
func writeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	if middleware.IsTooLarge(err) {
		problem.Write(w, r, http.StatusRequestEntityTooLarge, "Request body too large", err, env)
		return
	}
	problem.Error(w, r, err, env)
}

// decodeJSON reads a single JSON object into dst. An empty body leaves dst
// untouched so the service reports the missing fields.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return errInvalidJSON
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	return strings.HasPrefix(contentType, "multipart/form-data") ||
		strings.HasPrefix(contentType, "application/x-www-form-urlencoded")
}

// recordWrite audits a mutation attempt and counts it when it succeeded.
func recordWrite(r *http.Request, resource, action, id string, err error) {
	status := audit.StatusSuccess
	var details map[string]string
	if err != nil {
		status = audit.StatusFailure
		details = map[string]string{"error": apperr.KindOf(err).String()}
	} else {
		metrics.ResourceWrites.WithLabelValues(resource, action).Inc()
	}
	audit.FromContext(r.Context()).LogFromRequest(r, resource+"."+action, resource, id, status, details)
}
