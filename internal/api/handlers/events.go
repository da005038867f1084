package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Togather-Foundation/listings/internal/api/middleware"
	"github.com/Togather-Foundation/listings/internal/apperr"
	"github.com/Togather-Foundation/listings/internal/auth"
	"github.com/Togather-Foundation/listings/internal/domain/events"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// multipartMemory is how much of a form is kept in memory before spilling
// file parts to disk.
const multipartMemory = 1 << 20

type EventService interface {
	Create(ctx context.Context, params events.CreateParams, callerID string) (*events.Event, error)
	List(ctx context.Context) ([]events.Event, error)
	Get(ctx context.Context, id string) (*events.Event, error)
	Update(ctx context.Context, id string, params events.UpdateParams, callerID string) (*events.Event, error)
	Delete(ctx context.Context, id string) error
}

// ImageStore persists uploaded event images. *uploads.Store implements it.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ref string) error
}

type EventsHandler struct {
	Service EventService
	Images  ImageStore
	Env     string
}

func NewEventsHandler(service EventService, images ImageStore, env string) *EventsHandler {
	return &EventsHandler{Service: service, Images: images, Env: env}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Create accepts either a JSON body or a multipart form with an optional
// image file. The organizer is always the authenticated caller.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrMissingToken, h.Env)
		return
	}

	var (
		params   events.CreateParams
		uploaded string
		err      error
	)
	if isMultipart(r) {
		var patch events.UpdateParams
		patch, uploaded, err = h.parseForm(r)
		if err == nil {
			params = createFromPatch(patch)
		}
	} else {
		err = decodeJSON(r, &params)
	}
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), params, claims.ID)
	if err != nil {
		h.discard(r, uploaded)
		recordWrite(r, "event", "create", "", err)
		writeError(w, r, err, h.Env)
		return
	}
	recordWrite(r, "event", "create", event.ID, nil)
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrMissingToken, h.Env)
		return
	}

	var (
		params   events.UpdateParams
		uploaded string
		err      error
	)
	if isMultipart(r) {
		params, uploaded, err = h.parseForm(r)
	} else {
		err = decodeJSON(r, &params)
	}
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	id := r.PathValue("id")
	event, err := h.Service.Update(r.Context(), id, params, claims.ID)
	recordWrite(r, "event", "update", id, err)
	if err != nil {
		h.discard(r, uploaded)
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.Service.Delete(r.Context(), id)
	recordWrite(r, "event", "delete", id, err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseForm reads the form fields that were sent and stores the image part,
// if any. The returned reference is set when a file was written.
func (h *EventsHandler) parseForm(r *http.Request) (events.UpdateParams, string, error) {
	var params events.UpdateParams

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if middleware.IsTooLarge(err) {
			return params, "", err
		}
		return params, "", apperr.ValidationError{Message: "Invalid form body"}
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	params.Title = formValue(r, "title")
	params.Description = formValue(r, "description")
	params.DateTime = formValue(r, "dateTime")
	params.VenueID = formValue(r, "venue")
	params.Map = formValue(r, "map")
	params.Image = formValue(r, "image")

	minPrice, err := formDecimal(r, "pricing.min", "pricing[min]", "pricing.min")
	if err != nil {
		return params, "", err
	}
	maxPrice, err := formDecimal(r, "pricing.max", "pricing[max]", "pricing.max")
	if err != nil {
		return params, "", err
	}
	if minPrice != nil || maxPrice != nil {
		params.Pricing = &events.PricingPatch{Min: minPrice, Max: maxPrice}
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return params, "", nil
	case err != nil:
		return params, "", apperr.Invalid("image", "could not read file")
	}
	defer file.Close()

	ref, err := h.saveImage(r.Context(), header, file)
	if err != nil {
		return params, "", err
	}
	params.UploadedImage = ref
	return params, ref, nil
}

func (h *EventsHandler) saveImage(ctx context.Context, header *multipart.FileHeader, file multipart.File) (string, error) {
	if h.Images == nil {
		return "", apperr.Invalid("image", "uploads are disabled")
	}
	return h.Images.Save(ctx, header.Filename, file)
}

// discard removes an image stored for a request that then failed.
func (h *EventsHandler) discard(r *http.Request, ref string) {
	if ref == "" || h.Images == nil {
		return
	}
	if err := h.Images.Remove(ref); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("image", ref).Msg("failed to discard upload")
	}
}

func createFromPatch(p events.UpdateParams) events.CreateParams {
	var params events.CreateParams
	params.Title = deref(p.Title)
	params.Description = deref(p.Description)
	params.DateTime = deref(p.DateTime)
	params.VenueID = deref(p.VenueID)
	params.Map = deref(p.Map)
	params.Image = deref(p.Image)
	params.UploadedImage = p.UploadedImage
	if p.Pricing != nil {
		params.Pricing = events.PricingParams{Min: p.Pricing.Min, Max: p.Pricing.Max}
	}
	return params
}

// formValue returns nil when none of the keys were sent.
func formValue(r *http.Request, keys ...string) *string {
	for _, key := range keys {
		if values, ok := r.Form[key]; ok && len(values) > 0 {
			value := values[0]
			return &value
		}
	}
	return nil
}

func formDecimal(r *http.Request, field string, keys ...string) (*decimal.Decimal, error) {
	raw := formValue(r, keys...)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return nil, apperr.Invalid(field, "must be a number")
	}
	return &value, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
