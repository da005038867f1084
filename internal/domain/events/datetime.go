package events

import (
	"strings"
	"time"

	"github.com/Togather-Foundation/listings/internal/apperr"
	dateparser "github.com/markusmobius/go-dateparser"
)

var errInvalidDateTime = apperr.Invalid("dateTime", "must be a valid date and time")

var dateParserConfig = &dateparser.Configuration{
	Languages:       []string{"en"},
	DefaultTimezone: time.UTC,
}

// ParseDateTime accepts RFC3339 timestamps and falls back to free-form dates
// such as "2026-06-01 20:00" or "June 1 2026 8pm". Results are in UTC.
func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperr.Invalid("dateTime", "is required")
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}

	parsed, err := dateparser.Parse(dateParserConfig, value)
	if err != nil || parsed.Time.IsZero() {
		return time.Time{}, errInvalidDateTime
	}
	return parsed.Time.UTC(), nil
}
