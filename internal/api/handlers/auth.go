package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Togather-Foundation/listings/internal/api/middleware"
	"github.com/Togather-Foundation/listings/internal/apperr"
	"github.com/Togather-Foundation/listings/internal/auth"
	"github.com/Togather-Foundation/listings/internal/domain/users"
	"github.com/Togather-Foundation/listings/internal/metrics"
	"github.com/rs/zerolog"
)

// redirectAfterLogin is where clients send the user after a successful login.
const redirectAfterLogin = "/events"

var errUnknownUser = apperr.New(apperr.ErrAuth, "User not found.")

type UserService interface {
	Register(ctx context.Context, params users.RegisterParams) (auth.Claims, error)
	Authenticate(ctx context.Context, email, password string) (auth.Claims, error)
	GetByID(ctx context.Context, id string) (auth.Claims, error)
}

type TokenIssuer interface {
	Issue(claims auth.Claims) (string, error)
}

type AuthHandler struct {
	Users  UserService
	Tokens TokenIssuer
	Env    string
}

func NewAuthHandler(users UserService, tokens TokenIssuer, env string) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, Env: env}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	UserType string `json:"userType"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	User auth.Claims `json:"user"`
}

type loginResponse struct {
	AuthToken   string      `json:"authToken"`
	RedirectURL string      `json:"redirectUrl"`
	User        auth.Claims `json:"user"`
}

// Signup registers a fan or organizer. userType is the canonical field; role
// is accepted as an alias.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	role := req.UserType
	if role == "" {
		role = req.Role
	}

	user, err := h.Users.Register(r.Context(), users.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     role,
	})
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	metrics.AuthSignups.Inc()
	writeJSON(w, http.StatusCreated, userResponse{User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	claims, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			metrics.AuthLogins.WithLabelValues("unknown_user").Inc()
			err = errUnknownUser
		case errors.Is(err, users.ErrBadPassword):
			metrics.AuthLogins.WithLabelValues("bad_password").Inc()
		case errors.Is(err, apperr.ErrValidation):
			metrics.AuthLogins.WithLabelValues("invalid").Inc()
		default:
			metrics.AuthLogins.WithLabelValues("error").Inc()
		}
		writeError(w, r, err, h.Env)
		return
	}

	token, err := h.Tokens.Issue(claims)
	if err != nil {
		metrics.AuthLogins.WithLabelValues("error").Inc()
		writeError(w, r, err, h.Env)
		return
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()
	zerolog.Ctx(r.Context()).Info().Str("user_id", claims.ID).Msg("user logged in")
	writeJSON(w, http.StatusOK, loginResponse{
		AuthToken:   token,
		RedirectURL: redirectAfterLogin,
		User:        claims,
	})
}

// Verify echoes the claims of a valid token.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrMissingToken, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, claims)
}
