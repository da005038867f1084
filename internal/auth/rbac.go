package auth

import "github.com/Togather-Foundation/listings/internal/apperr"

type Role string

const (
	RoleFan       Role = "fan"
	RoleOrganizer Role = "organizer"
)

var ErrForbidden = apperr.New(apperr.ErrForbidden, "Access forbidden: Organizers only.")

// ParseRole accepts only the exact role names; anything else, including
// other casings, reports ok=false.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleFan:
		return RoleFan, true
	case RoleOrganizer:
		return RoleOrganizer, true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	return r == RoleFan || r == RoleOrganizer
}

// RequireRole lets the request proceed only when the caller holds expected.
func RequireRole(claims Claims, expected Role) error {
	if claims.Role != expected {
		if expected == RoleOrganizer {
			return ErrForbidden
		}
		return apperr.New(apperr.ErrForbidden, "Access forbidden: "+string(expected)+"s only.")
	}
	return nil
}
