package validation

import (
	"net/url"
	"strings"

	"github.com/Togather-Foundation/listings/internal/apperr"
)

// ValidateURL validates that a URL is well-formed, has a host and uses http or https.
func ValidateURL(urlString, fieldName string) error {
	if urlString == "" {
		return nil
	}

	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return apperr.Invalid(fieldName, "invalid URL format")
	}
	if parsedURL.Scheme == "" {
		return apperr.Invalid(fieldName, "URL must include a scheme (http:// or https://)")
	}
	if parsedURL.Host == "" {
		return apperr.Invalid(fieldName, "URL must include a host")
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme != "http" && scheme != "https" {
		return apperr.Invalid(fieldName, "URL scheme must be http or https")
	}
	return nil
}

// ValidateReference accepts an empty value, an absolute http(s) URL, or a
// server-relative path such as "/uploads/1717171717.png".
func ValidateReference(value, fieldName string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if strings.HasPrefix(value, "/") {
		if strings.HasPrefix(value, "//") || strings.Contains(value, "..") {
			return apperr.Invalid(fieldName, "invalid path")
		}
		if _, err := url.Parse(value); err != nil {
			return apperr.Invalid(fieldName, "invalid path")
		}
		return nil
	}
	return ValidateURL(value, fieldName)
}
