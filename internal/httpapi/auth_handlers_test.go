package httpapi

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"freshport.io/internal/auth"
)

func TestLoginSetsSessionCookies(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser("boss@example.com", "open sesame", auth.RoleSuperAdmin)

	resp := api.post("/v1/admin/login", map[string]any{
		"email":    "boss@example.com",
		"password": "open sesame",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cookies := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c
	}
	session, ok := cookies[sessionCookieName]
	if !ok || session.Value == "" {
		t.Fatal("admin-token cookie missing")
	}
	if !session.HttpOnly {
		t.Fatal("admin-token must be HttpOnly")
	}
	csrf, ok := cookies[csrfCookieName]
	if !ok || csrf.Value == "" {
		t.Fatal("csrf-token cookie missing")
	}
	flag, ok := cookies[authFlagCookieName]
	if !ok || flag.Value != "true" {
		t.Fatal("is-authenticated cookie missing")
	}
	if flag.HttpOnly {
		t.Fatal("is-authenticated must be readable by scripts")
	}

	body := decodeBody[map[string]any](t, resp)
	if body["csrf_token"] != csrf.Value {
		t.Fatal("csrf_token in body must match the cookie")
	}
	if body["user"] == nil {
		t.Fatal("expected user payload")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser("boss@example.com", "open sesame", auth.RoleAdmin)

	resp := api.post("/v1/admin/login", map[string]any{
		"email":    "boss@example.com",
		"password": "nope",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if len(resp.Cookies()) != 0 {
		t.Fatal("failed login must not set cookies")
	}
}

// a broken store must not masquerade as bad credentials
type failingUserStore struct {
	auth.UserStore
}

func (failingUserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return nil, errors.New("store: connection reset")
}

func TestLoginStoreFailureIsInternalError(t *testing.T) {
	issuer, err := auth.NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	svc, err := auth.NewService(failingUserStore{}, issuer)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	api := newTestAPI(t, func(cfg *Config) { cfg.Auth = svc })

	resp := api.post("/v1/admin/login", map[string]any{
		"email":    "boss@example.com",
		"password": "open sesame",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 for a store failure, got %d", resp.StatusCode)
	}
}

func TestLoginLockedAccountReturns423(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser("boss@example.com", "open sesame", auth.RoleAdmin)

	// the fifth consecutive failure trips the lockout
	for i := 0; i < 4; i++ {
		resp := api.post("/v1/admin/login", map[string]any{
			"email":    "boss@example.com",
			"password": "nope",
		}, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, resp.StatusCode)
		}
	}
	resp := api.post("/v1/admin/login", map[string]any{
		"email":    "boss@example.com",
		"password": "nope",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusLocked {
		t.Fatalf("expected 423, got %d", resp.StatusCode)
	}
}

func TestLoginRateLimitedPerIP(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser("boss@example.com", "open sesame", auth.RoleAdmin)

	for i := 0; i < 5; i++ {
		resp := api.post("/v1/admin/login", map[string]any{
			"email":    "boss@example.com",
			"password": "open sesame",
		}, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}

	resp := api.post("/v1/admin/login", map[string]any{
		"email":    "boss@example.com",
		"password": "open sesame",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestMeRequiresSession(t *testing.T) {
	api := newTestAPI(t)
	resp := api.get("/v1/admin/me", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	api.loginAs("boss@example.com", auth.RoleAdmin)
	resp = api.get("/v1/admin/me", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody[map[string]any](t, resp)
	if body["email"] != "boss@example.com" || body["role"] != "ADMIN" {
		t.Fatalf("unexpected identity %v", body)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	api := newTestAPI(t)
	api.loginAs("boss@example.com", auth.RoleAdmin)

	resp := api.post("/v1/admin/logout", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = api.get("/v1/admin/me", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}
