package httpapi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/google/uuid"

	"freshport.io/internal/auth"
)

const (
	sessionCookieName = "admin-token"
	csrfCookieName    = "csrf-token"
	// is-authenticated is readable by scripts so the SPA can tell whether a
	// session exists without being able to read the token itself.
	authFlagCookieName = "is-authenticated"

	csrfHeaderName = "X-CSRF-Token"
)

// setSessionCookies installs the three session cookies and returns the CSRF
// token so the login response can hand it to the client for header echo.
func (a *API) setSessionCookies(w http.ResponseWriter, token string, expires time.Time) string {
	csrf := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(auth.TokenTTL / time.Second),
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    csrf,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(auth.TokenTTL / time.Second),
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     authFlagCookieName,
		Value:    "true",
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(auth.TokenTTL / time.Second),
		HttpOnly: false,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	return csrf
}

func (a *API) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{sessionCookieName, csrfCookieName, authFlagCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: name != authFlagCookieName,
			Secure:   a.cookieSecure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// checkCSRF enforces the double-submit pattern on mutating admin requests:
// the csrf-token cookie must match the X-CSRF-Token header.
func checkCSRF(r *http.Request) bool {
	c, err := r.Cookie(csrfCookieName)
	if err != nil || c.Value == "" {
		return false
	}
	header := r.Header.Get(csrfHeaderName)
	if header == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Value), []byte(header)) == 1
}
