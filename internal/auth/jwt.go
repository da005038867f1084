package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/Togather-Foundation/listings/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 6 * time.Hour

// Claims is the identity embedded in a signed token.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

type tokenClaims struct {
	Claims
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

var (
	ErrMissingToken = apperr.New(apperr.ErrAuth, "missing token")
	ErrInvalidToken = apperr.New(apperr.ErrAuth, "invalid token")
	ErrExpiredToken = apperr.New(apperr.ErrAuth, "token expired")
)

type IssuerOption func(*TokenIssuer)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) {
		i.now = now
	}
}

func NewTokenIssuer(secret string, issuer string, opts ...IssuerOption) *TokenIssuer {
	i := &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *TokenIssuer) Issue(claims Claims) (string, error) {
	if claims.ID == "" || !claims.Role.Valid() {
		return "", ErrInvalidToken
	}

	now := i.now()
	payload := &tokenClaims{
		Claims: claims,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.ID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	return token.SignedString(i.secret)
}

func (i *TokenIssuer) Verify(tokenString string) (Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrMissingToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.now),
	)

	var payload tokenClaims
	parsed, err := parser.ParseWithClaims(tokenString, &payload, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}
	if !parsed.Valid || payload.Claims.ID == "" || !payload.Claims.Role.Valid() {
		return Claims{}, ErrInvalidToken
	}
	return payload.Claims, nil
}

func TokenFromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
