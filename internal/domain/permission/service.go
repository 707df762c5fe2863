package permission

import "storefront/internal/domain/apperr"

var (
	ErrAuthRequired = apperr.New(apperr.KindUnauthorized, "Authentication credentials were not provided.")
	ErrDenied       = apperr.New(apperr.KindForbidden, "You do not have permission to perform this action.")
)

// Allowed evaluates the policy for r's kind.
func Allowed(a Actor, c Capability, r Resource) bool {
	switch r.Kind {
	case KindCatalog:
		if c == Read {
			return r.Public || a.IsStaff
		}
		return a.Authenticated() && a.IsStaff

	case KindComment:
		switch c {
		case Read:
			return true
		case Write:
			return a.Authenticated()
		default:
			return a.Authenticated() && a.UserID == r.OwnerID
		}

	case KindCart, KindProfile:
		return a.Authenticated() && a.UserID == r.OwnerID

	case KindOrder:
		switch c {
		case Read:
			return a.Authenticated() && (a.UserID == r.OwnerID || a.IsStaff)
		case Write:
			return a.Authenticated() && a.IsStaff
		default:
			return a.Authenticated() && a.UserID == r.OwnerID
		}
	}
	return false
}

// Check is Allowed returning the error the HTTP layer expects:
// anonymous callers get ErrAuthRequired, everyone else ErrDenied.
func Check(a Actor, c Capability, r Resource) error {
	if Allowed(a, c, r) {
		return nil
	}
	if !a.Authenticated() {
		return ErrAuthRequired
	}
	return ErrDenied
}

// RequireAuth is the authenticated-only check used by endpoints without a
// concrete resource yet (e.g. creating a comment).
func RequireAuth(a Actor) error {
	if !a.Authenticated() {
		return ErrAuthRequired
	}
	return nil
}

// RequireStaff rejects non-staff callers.
func RequireStaff(a Actor) error {
	if !a.Authenticated() {
		return ErrAuthRequired
	}
	if !a.IsStaff {
		return ErrDenied
	}
	return nil
}
