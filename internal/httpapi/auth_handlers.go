package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"freshport.io/internal/auth"
	"freshport.io/internal/obs"
	"freshport.io/internal/ratelimit"
)

const (
	loginRateLimit  = 5
	loginRateWindow = 15 * time.Minute
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      *auth.User `json:"user"`
	ExpiresAt time.Time  `json:"expires_at"`
	CSRFToken string     `json:"csrf_token"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	res, err := a.limiter.Allow(r.Context(), ratelimit.Key("login", clientIP(r)), loginRateLimit, loginRateWindow)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if !res.Allowed {
		obs.CountRateLimited("login")
		retryAfter(w, res.ResetAt)
		writeError(w, r, http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, token, expires, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAccountLocked):
			writeError(w, r, http.StatusLocked, "account temporarily locked")
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrAccountDisabled):
			// одна формулировка на оба случая: не подсказываем, что именно не так
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	csrf := a.setSessionCookies(w, token, expires)
	writeJSON(w, http.StatusOK, loginResponse{
		User:      user,
		ExpiresAt: expires,
		CSRFToken: csrf,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	// инвалидируем все выданные токены пользователя, не только этот;
	// просроченный или уже отозванный токен — не повод вернуть ошибку
	if token := sessionToken(r); token != "" {
		_ = a.auth.Logout(r.Context(), token)
	}
	a.clearSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	id, err := a.auth.Authenticate(r.Context(), sessionToken(r))
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func retryAfter(w http.ResponseWriter, resetAt time.Time) {
	secs := int(time.Until(resetAt).Seconds())
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
}
