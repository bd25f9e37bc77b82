package httpapi

import (
	"errors"
	"net/http"

	"freshport.io/internal/auth"
)

// sessionToken pulls the token out of the admin-token cookie.
func sessionToken(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// requirePermission runs the full gate for an admin endpoint: session token,
// live user re-check, then the permission matrix. On failure it writes the
// error response and returns ok=false.
func (a *API) requirePermission(w http.ResponseWriter, r *http.Request, action auth.Action) (auth.Identity, bool) {
	id, err := a.auth.Require(r.Context(), sessionToken(r), action)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrForbidden):
			writeError(w, r, http.StatusForbidden, "forbidden")
		case errors.Is(err, auth.ErrUnauthenticated):
			writeError(w, r, http.StatusUnauthorized, "authentication required")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return auth.Identity{}, false
	}
	return id, true
}

// requireMutation is requirePermission plus the CSRF double-submit check,
// used on every state-changing admin endpoint.
func (a *API) requireMutation(w http.ResponseWriter, r *http.Request, action auth.Action) (auth.Identity, bool) {
	if !checkCSRF(r) {
		writeError(w, r, http.StatusForbidden, "csrf token mismatch")
		return auth.Identity{}, false
	}
	return a.requirePermission(w, r, action)
}
