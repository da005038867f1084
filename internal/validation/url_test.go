package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/Togather-Foundation/listings/internal/apperr"
)

func TestValidateURL_ValidURLs(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"HTTP URL", "http://example.com"},
		{"HTTPS URL", "https://example.com"},
		{"URL with path", "https://example.com/path/to/resource"},
		{"URL with query", "https://maps.example.com?q=venue"},
		{"URL with port", "https://example.com:8080/path"},
		{"Empty URL (allowed)", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateURL(tt.url, "map"); err != nil {
				t.Errorf("ValidateURL(%q) returned error: %v", tt.url, err)
			}
		})
	}
}

func TestValidateURL_InvalidURLs(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		expectedError string
	}{
		{"No scheme", "example.com", "must include a scheme"},
		{"Invalid scheme", "ftp://example.com", "scheme must be http or https"},
		{"No host", "https://", "must include a host"},
		{"Malformed URL", "ht!tp://example.com", "invalid URL format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, "map")
			if err == nil {
				t.Fatalf("ValidateURL(%q) expected error", tt.url)
			}
			if !strings.Contains(err.Error(), tt.expectedError) {
				t.Errorf("expected error containing %q, got %q", tt.expectedError, err.Error())
			}
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("expected validation kind, got %v", err)
			}
		})
	}
}

func TestValidateReference(t *testing.T) {
	valid := []string{"", "/uploads/1717171717.png", "https://maps.example.com/venue"}
	for _, value := range valid {
		if err := ValidateReference(value, "image"); err != nil {
			t.Errorf("ValidateReference(%q) returned error: %v", value, err)
		}
	}

	invalid := []string{"//evil.example.com/x.png", "/uploads/../etc/passwd", "uploads/x.png", "javascript:alert(1)"}
	for _, value := range invalid {
		if err := ValidateReference(value, "image"); err == nil {
			t.Errorf("ValidateReference(%q) expected error", value)
		}
	}
}
