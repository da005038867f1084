package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Togather-Foundation/listings/internal/apperr"
	"github.com/Togather-Foundation/listings/internal/auth"
	"github.com/Togather-Foundation/listings/internal/domain/ids"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt password hashing
	BcryptCost = 10

	// MinPasswordLength is the minimum number of characters in a password
	MinPasswordLength = 6
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

var (
	ErrMissingFields   = apperr.ValidationError{Message: "Provide email, password and name"}
	ErrInvalidRole     = apperr.ValidationError{Field: "userType", Message: "Invalid user type"}
	ErrInvalidEmail    = apperr.ValidationError{Field: "email", Message: "Provide a valid email address."}
	ErrPasswordTooWeak = apperr.ValidationError{
		Field:   "password",
		Message: "Password must have at least 6 characters and contain at least one number, one lowercase and one uppercase letter.",
	}
	ErrMissingCredentials = apperr.ValidationError{Message: "Provide email and password."}
)

// Service is the credential store: registration, authentication and lookup.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	cost   int
}

type Option func(*Service)

// WithBcryptCost overrides the hashing cost (tests use bcrypt.MinCost).
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

// NewService creates a new user service instance
func NewService(repo Repository, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: logger.With().Str("component", "users").Logger(),
		cost:   BcryptCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterParams contains the signup payload
type RegisterParams struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// Register validates the payload, hashes the password and stores the user.
// The returned claims never include the password.
func (s *Service) Register(ctx context.Context, params RegisterParams) (auth.Claims, error) {
	email := normalizeEmail(params.Email)
	name := strings.TrimSpace(params.Name)

	if email == "" || params.Password == "" || name == "" || strings.TrimSpace(params.Role) == "" {
		return auth.Claims{}, ErrMissingFields
	}
	role, ok := auth.ParseRole(params.Role)
	if !ok {
		return auth.Claims{}, ErrInvalidRole
	}
	if !emailRegex.MatchString(email) {
		return auth.Claims{}, ErrInvalidEmail
	}
	if err := validatePassword(params.Password); err != nil {
		return auth.Claims{}, err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return auth.Claims{}, ErrEmailTaken
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return auth.Claims{}, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.cost)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := ids.NewULID()
	if err != nil {
		return auth.Claims{}, fmt.Errorf("failed to generate id: %w", err)
	}

	user, err := s.repo.Create(ctx, CreateParams{
		ID:           id,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return auth.Claims{}, ErrEmailTaken
		}
		return auth.Claims{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Msg("user registered")

	return user.Claims(), nil
}

// Authenticate checks credentials and returns the user's public claims.
func (s *Service) Authenticate(ctx context.Context, email, password string) (auth.Claims, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return auth.Claims{}, ErrMissingCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.Claims{}, ErrNotFound
		}
		return auth.Claims{}, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug().Str("user_id", user.ID).Msg("password mismatch")
		return auth.Claims{}, ErrBadPassword
	}

	return user.Claims(), nil
}

// GetByID returns a user's public claims
func (s *Service) GetByID(ctx context.Context, id string) (auth.Claims, error) {
	if !ids.IsULID(id) {
		return auth.Claims{}, ErrNotFound
	}
	user, err := s.repo.GetByID(ctx, ids.Normalize(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.Claims{}, ErrNotFound
		}
		return auth.Claims{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user.Claims(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validatePassword requires at least 6 characters with a digit, a lowercase and an uppercase letter.
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooWeak
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return ErrPasswordTooWeak
	}
	return nil
}
