package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Togather-Foundation/listings/internal/api/middleware"
	"github.com/Togather-Foundation/listings/internal/auth"
	"github.com/Togather-Foundation/listings/internal/config"
	"github.com/Togather-Foundation/listings/internal/uploads"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const missingID = "01HYX3KQW7ERTV9XNBM2P8QJZF"

type testServer struct {
	t       *testing.T
	handler http.Handler
	store   *memStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Defaults()
	cfg.Environment = "test"
	cfg.RateLimit.PublicPerMinute = 10000
	cfg.RateLimit.AuthPerMinute = 10000
	cfg.CORS.AllowAllOrigins = true

	store, err := uploads.NewStore(t.TempDir(), cfg.Uploads.MaxBytes, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	mem := newMemStore()
	handler := NewRouter(ctx, cfg, Deps{
		Repo:    mem,
		Tokens:  auth.NewTokenIssuer("router-test-secret", "listings"),
		Uploads: store,
		Logger:  zerolog.Nop(),
		Build:   BuildInfo{Version: "test"},
	})
	return &testServer{t: t, handler: handler, store: mem}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// signupAndLogin registers a user and returns a token for it.
func (s *testServer) signupAndLogin(email, role string) string {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"email": email, "password": "Passw0rd", "name": "Test", "userType": role,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "Passw0rd"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AuthToken string `json:"authToken"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AuthToken
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRouter_SignupLoginScenario(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "a@b.com", "password": "Passw0rd", "name": "A", "userType": "organizer",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "password")
	user := decodeMap(t, rec)["user"].(map[string]any)
	assert.Equal(t, "a@b.com", user["email"])
	assert.Equal(t, "organizer", user["role"])

	rec = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@b.com", "password": "Passw0rd"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeMap(t, rec)
	token, _ := login["authToken"].(string)
	assert.NotEmpty(t, token)
	assert.Equal(t, "/events", login["redirectUrl"])

	rec = s.do(http.MethodPost, "/events", "", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodDelete, "/venues/"+missingID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/auth/verify", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@b.com", decodeMap(t, rec)["email"])

	rec = s.do(http.MethodGet, "/user/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeMap(t, rec)["user"].(map[string]any)

	rec = s.do(http.MethodGet, "/user/"+profile["id"].(string), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, profile, decodeMap(t, rec)["user"])
}

func TestRouter_LoginFailures(t *testing.T) {
	s := newTestServer(t)
	s.signupAndLogin("a@b.com", "fan")

	rec := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "nobody@b.com", "password": "Passw0rd"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@b.com", "password": "Wrong123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "A@B.com", "password": "Passw0rd", "name": "Again", "userType": "fan",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_FanCannotMutate(t *testing.T) {
	s := newTestServer(t)
	fan := s.signupAndLogin("fan@b.com", "fan")

	writes := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/venues", map[string]any{"name": "Hall", "capacity": 10, "location": map[string]string{"town": "T", "streetName": "S"}}},
		{http.MethodPost, "/venues", map[string]any{}},
		{http.MethodPut, "/venues/" + missingID, map[string]any{"name": "x"}},
		{http.MethodDelete, "/venues/" + missingID, nil},
		{http.MethodPost, "/events", map[string]any{"title": "x"}},
		{http.MethodPut, "/events/" + missingID, map[string]any{"title": "x"}},
		{http.MethodDelete, "/events/" + missingID, nil},
	}
	for _, w := range writes {
		rec := s.do(w.method, w.path, fan, w.body)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", w.method, w.path)
		assert.JSONEq(t, `{"message":"Access forbidden: Organizers only."}`, rec.Body.String())
	}

	rec := s.do(http.MethodGet, "/venues", fan, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_VenueAndEventRoundTrip(t *testing.T) {
	s := newTestServer(t)
	token := s.signupAndLogin("o@b.com", "organizer")

	rec := s.do(http.MethodPost, "/venues", token, map[string]any{
		"name": "Hall", "capacity": 200, "location": map[string]string{"town": "Lisbon", "streetName": "Rua A"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	venue := decodeMap(t, rec)
	venueID := venue["id"].(string)

	rec = s.do(http.MethodPost, "/events", token, map[string]any{
		"title":       "Concert",
		"description": "<b>Live</b><script>alert(1)</script>",
		"dateTime":    "2025-06-01T20:00:00Z",
		"pricing":     map[string]any{"min": 10, "max": 25.5},
		"venue":       venueID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeMap(t, rec)
	eventID := created["id"].(string)
	assert.NotContains(t, created["description"], "<script>")

	rec = s.do(http.MethodGet, "/events/"+eventID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeMap(t, rec)
	assert.Equal(t, venue, got["venue"], "venue is expanded to the full record")
	assert.NotEmpty(t, got["organizer"])
	assert.Equal(t, 25.5, got["pricing"].(map[string]any)["max"])

	rec = s.do(http.MethodGet, "/events", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, venue, list[0]["venue"])

	rec = s.do(http.MethodPut, "/events/"+eventID, token, map[string]any{"title": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", decodeMap(t, rec)["title"])

	rec = s.do(http.MethodPut, "/events/"+eventID, token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/venues/"+venueID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/events/"+eventID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeMap(t, rec)["venue"], "dangling venue expands to null")

	rec = s.do(http.MethodDelete, "/events/"+eventID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, "/events/"+eventID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_EventRequiresExistingVenue(t *testing.T) {
	s := newTestServer(t)
	token := s.signupAndLogin("o@b.com", "organizer")

	rec := s.do(http.MethodPost, "/events", token, map[string]any{
		"title": "Concert", "description": "Live", "dateTime": "2025-06-01T20:00:00Z",
		"pricing": map[string]any{"min": 1, "max": 2}, "venue": missingID,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Venue not found","field":"venue"}`, rec.Body.String())
	assert.Empty(t, s.store.events)
}

func TestRouter_MetaEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"All good in here"`, strings.TrimSpace(rec.Body.String()))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeMap(t, rec)["status"])

	s.store.pingErr = errors.New("down")
	rec = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = s.do(http.MethodGet, "/version", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", decodeMap(t, rec)["version"])

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "listings_http_requests_total")

	rec = s.do(http.MethodGet, "/openapi.json", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPatch, "/venues", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = s.do(http.MethodGet, "/uploads/missing.png", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

var posterPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func (s *testServer) doForm(method, path, token string, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "poster.png")
		require.NoError(s.t, err)
		_, err = part.Write(image)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_EventCannotClaimAnotherEventsImage(t *testing.T) {
	s := newTestServer(t)
	owner := s.signupAndLogin("owner@b.com", "organizer")
	other := s.signupAndLogin("other@b.com", "organizer")

	rec := s.do(http.MethodPost, "/venues", owner, map[string]any{
		"name": "Hall", "capacity": 200, "location": map[string]string{"town": "Lisbon", "streetName": "Rua A"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	venueID := decodeMap(t, rec)["id"].(string)

	rec = s.doForm(http.MethodPost, "/events", owner, map[string]string{
		"title": "Concert", "description": "Live", "dateTime": "2025-06-01T20:00:00Z",
		"pricing[min]": "10", "pricing[max]": "20", "venue": venueID,
	}, posterPNG)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	image := decodeMap(t, rec)["image"].(string)
	require.True(t, strings.HasPrefix(image, "/uploads/"), image)

	event := map[string]any{
		"title": "Copycat", "description": "Live", "dateTime": "2025-06-02T20:00:00Z",
		"pricing": map[string]any{"min": 1, "max": 2}, "venue": venueID,
	}
	event["image"] = image
	rec = s.do(http.MethodPost, "/events", other, event)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "image", decodeMap(t, rec)["field"])

	delete(event, "image")
	rec = s.do(http.MethodPost, "/events", other, event)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	copycatID := decodeMap(t, rec)["id"].(string)

	rec = s.do(http.MethodPut, "/events/"+copycatID, other, map[string]any{"image": image})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = s.doForm(http.MethodPut, "/events/"+copycatID, other, map[string]string{"image": image}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = s.do(http.MethodDelete, "/events/"+copycatID, other, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, image, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "the first event's image survives")
}
