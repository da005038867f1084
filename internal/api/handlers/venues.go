package handlers

import (
	"context"
	"net/http"

	"github.com/Togather-Foundation/listings/internal/domain/venues"
)

type VenueService interface {
	Create(ctx context.Context, params venues.CreateParams) (*venues.Venue, error)
	List(ctx context.Context) ([]venues.Venue, error)
	Get(ctx context.Context, id string) (*venues.Venue, error)
	Update(ctx context.Context, id string, params venues.UpdateParams) (*venues.Venue, error)
	Delete(ctx context.Context, id string) error
}

type VenuesHandler struct {
	Service VenueService
	Env     string
}

func NewVenuesHandler(service VenueService, env string) *VenuesHandler {
	return &VenuesHandler{Service: service, Env: env}
}

func (h *VenuesHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *VenuesHandler) Get(w http.ResponseWriter, r *http.Request) {
	venue, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, venue)
}

func (h *VenuesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params venues.CreateParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	venue, err := h.Service.Create(r.Context(), params)
	if err != nil {
		recordWrite(r, "venue", "create", "", err)
		writeError(w, r, err, h.Env)
		return
	}
	recordWrite(r, "venue", "create", venue.ID, nil)
	writeJSON(w, http.StatusCreated, venue)
}

func (h *VenuesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var params venues.UpdateParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	id := r.PathValue("id")
	venue, err := h.Service.Update(r.Context(), id, params)
	recordWrite(r, "venue", "update", id, err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, venue)
}

func (h *VenuesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.Service.Delete(r.Context(), id)
	recordWrite(r, "venue", "delete", id, err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
