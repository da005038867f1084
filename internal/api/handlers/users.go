package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/listings/internal/api/middleware"
	"github.com/Togather-Foundation/listings/internal/auth"
)

type UsersHandler struct {
	Users UserService
	Env   string
}

func NewUsersHandler(users UserService, env string) *UsersHandler {
	return &UsersHandler{Users: users, Env: env}
}

// Profile returns the caller's own record.
func (h *UsersHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrMissingToken, h.Env)
		return
	}
	user, err := h.Users.GetByID(r.Context(), claims.ID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}
