package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/Togather-Foundation/listings/internal/api/problem"
	"github.com/Togather-Foundation/listings/internal/auth"
	"github.com/Togather-Foundation/listings/internal/metrics"
	"github.com/rs/zerolog"
)

// TokenVerifier checks a bearer token. *auth.TokenIssuer implements it.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

type claimsKey struct{}

// WithClaims stores the authenticated caller in ctx.
func WithClaims(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the caller set by Authenticate.
func ClaimsFromContext(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(auth.Claims)
	return claims, ok
}

// Authenticate rejects requests without a valid bearer token (401) and
// otherwise exposes the token's claims through ClaimsFromContext.
func Authenticate(verifier TokenVerifier, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				metrics.AuthDenials.WithLabelValues("missing_token").Inc()
				problem.Error(w, r, err, env)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, auth.ErrExpiredToken) {
					reason = "expired_token"
				}
				metrics.AuthDenials.WithLabelValues(reason).Inc()
				problem.Error(w, r, err, env)
				return
			}

			logger := zerolog.Ctx(r.Context()).With().Str("user_id", claims.ID).Logger()
			ctx := logger.WithContext(WithClaims(r.Context(), claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets the request through only when the authenticated caller has
// the expected role (403 otherwise). It must run after Authenticate.
func RequireRole(expected auth.Role, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				metrics.AuthDenials.WithLabelValues("missing_token").Inc()
				problem.Error(w, r, auth.ErrMissingToken, env)
				return
			}
			if err := auth.RequireRole(claims, expected); err != nil {
				metrics.AuthDenials.WithLabelValues("forbidden").Inc()
				problem.Error(w, r, err, env)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
