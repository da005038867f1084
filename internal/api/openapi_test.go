package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAPIHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	OpenAPIHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)

	for path, methods := range map[string][]string{
		"/auth/signup":  {"post"},
		"/auth/login":   {"post"},
		"/events":       {"get", "post"},
		"/events/{id}":  {"get", "put", "delete"},
		"/venues":       {"get", "post"},
		"/venues/{id}":  {"get", "put", "delete"},
		"/user/profile": {"get"},
		"/health":       {"get"},
	} {
		ops, ok := doc.Paths[path]
		require.True(t, ok, "missing path %s", path)
		for _, method := range methods {
			assert.Contains(t, ops, method, "%s %s", method, path)
		}
	}
}
