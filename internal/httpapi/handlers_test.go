package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"freshport.io/internal/audit"
	"freshport.io/internal/auth"
	"freshport.io/internal/catalog"
	"freshport.io/internal/inquiry"
	"freshport.io/internal/ratelimit"
	"freshport.io/internal/stream"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
	csrf    string

	users      *auth.MemoryUserStore
	authSvc    *auth.Service
	catalogSvc *catalog.Service
	inquirySvc *inquiry.Service
	auditStore *audit.MemoryStore
}

func newTestAPI(t *testing.T, opts ...func(*Config)) *apiClient {
	t.Helper()

	issuer, err := auth.NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	users := auth.NewMemoryUserStore()
	auditStore := audit.NewMemoryStore()
	recorder := audit.NewRecorder(auditStore)
	authSvc, err := auth.NewService(users, issuer, auth.WithAudit(recorder))
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	catalogSvc, err := catalog.NewService(catalog.NewMemoryStore())
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	events := stream.New()
	inquirySvc, err := inquiry.NewService(inquiry.NewMemoryStore(), events)
	if err != nil {
		t.Fatalf("inquiry service: %v", err)
	}

	cfg := Config{
		Ready:     ReadyProbe{},
		Version:   "test",
		Auth:      authSvc,
		Catalog:   catalogSvc,
		Inquiries: inquirySvc,
		Limiter:   ratelimit.NewMemory(),
		Audit:     recorder,
		Stream:    events,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	api, err := New(cfg)
	if err != nil {
		t.Fatalf("new api: %v", err)
	}

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := srv.Client()
	client.Jar = jar

	return &apiClient{
		baseURL:    srv.URL,
		client:     client,
		t:          t,
		users:      users,
		authSvc:    authSvc,
		catalogSvc: catalogSvc,
		inquirySvc: inquirySvc,
		auditStore: auditStore,
	}
}

// seedUser creates an active account directly in the store.
func (c *apiClient) seedUser(email, password string, role auth.Role) *auth.User {
	c.t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		c.t.Fatalf("hash: %v", err)
	}
	u := &auth.User{Email: email, PasswordHash: hash, Role: role, IsActive: true}
	if err := c.users.Create(context.Background(), u); err != nil {
		c.t.Fatalf("seed user: %v", err)
	}
	return u
}

// loginAs seeds an account and performs a real login so the client carries
// session cookies and the CSRF token afterwards.
func (c *apiClient) loginAs(email string, role auth.Role) *auth.User {
	c.t.Helper()
	u := c.seedUser(email, "open sesame", role)
	resp := c.post("/v1/admin/login", map[string]any{
		"email":    email,
		"password": "open sesame",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login as %s: status %d", email, resp.StatusCode)
	}
	var payload struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.t.Fatalf("decode login response: %v", err)
	}
	c.csrf = payload.CSRFToken
	return u
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) get(path string, params url.Values) *http.Response {
	c.t.Helper()
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		c.t.Fatalf("parse url: %v", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

// csrfHeader returns the header map a mutating admin request needs.
func (c *apiClient) csrfHeader() map[string]string {
	return map[string]string{csrfHeaderName: c.csrf}
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	resp := api.get("/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody[map[string]any](t, resp)
	if body["status"] != "ok" || body["service"] != "freshport-api" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestReadyWithoutDB(t *testing.T) {
	api := newTestAPI(t)
	resp := api.get("/readyz", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestInfo(t *testing.T) {
	api := newTestAPI(t)
	resp := api.get("/v1/info", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody[map[string]any](t, resp)
	if body["version"] != "test" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestUnknownPathReturns404(t *testing.T) {
	api := newTestAPI(t)
	resp := api.get("/v1/nope", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
