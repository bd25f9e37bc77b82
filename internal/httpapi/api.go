package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"freshport.io/internal/audit"
	"freshport.io/internal/auth"
	"freshport.io/internal/catalog"
	"freshport.io/internal/inquiry"
	"freshport.io/internal/obs"
	"freshport.io/internal/ratelimit"
	"freshport.io/internal/stream"
)

// ReadyProbe — простая проверка готовности (например, ping БД).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config wires the API's collaborators.
type Config struct {
	Ready     ReadyProbe
	Version   string
	Auth      *auth.Service
	Catalog   *catalog.Service
	Inquiries *inquiry.Service
	Limiter   ratelimit.Limiter
	Audit     *audit.Recorder
	Stream    *stream.Stream

	// CookieSecure marks session cookies Secure; leave off for local dev.
	CookieSecure bool

	// RateBurst / RatePerSecond tune the transport-level per-IP token
	// bucket. Zero means the defaults below.
	RateBurst     int
	RatePerSecond int
}

// запас с избытком для браузерной админки; чувствительные ручки дополнительно
// прикрыты оконным лимитером
const (
	defaultRateBurst     = 100
	defaultRatePerSecond = 50
)

// API — HTTP слой.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	auth      *auth.Service
	catalog   *catalog.Service
	inquiries *inquiry.Service
	limiter   ratelimit.Limiter
	auditRec  *audit.Recorder
	stream    *stream.Stream

	cookieSecure  bool
	rateBurst     int
	ratePerSecond int
}

func New(cfg Config) (*API, error) {
	if cfg.Auth == nil {
		return nil, errors.New("httpapi: auth service is required")
	}
	if cfg.Catalog == nil {
		return nil, errors.New("httpapi: catalog service is required")
	}
	if cfg.Inquiries == nil {
		return nil, errors.New("httpapi: inquiry service is required")
	}
	if cfg.Limiter == nil {
		return nil, errors.New("httpapi: rate limiter is required")
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = defaultRateBurst
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = defaultRatePerSecond
	}
	a := &API{
		mux:           http.NewServeMux(),
		readyProbe:    cfg.Ready,
		version:       cfg.Version,
		auth:          cfg.Auth,
		catalog:       cfg.Catalog,
		inquiries:     cfg.Inquiries,
		limiter:       cfg.Limiter,
		auditRec:      cfg.Audit,
		stream:        cfg.Stream,
		cookieSecure:  cfg.CookieSecure,
		rateBurst:     cfg.RateBurst,
		ratePerSecond: cfg.RatePerSecond,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// public site
	a.mux.HandleFunc("/v1/products", a.handlePublicProducts)
	a.mux.HandleFunc("/v1/products/", a.handlePublicProductByID)
	a.mux.HandleFunc("/v1/inquiries", a.handlePublicInquiries)

	// admin session
	a.mux.HandleFunc("/v1/admin/login", a.handleLogin)
	a.mux.HandleFunc("/v1/admin/logout", a.handleLogout)
	a.mux.HandleFunc("/v1/admin/me", a.handleMe)

	// admin back office
	a.mux.HandleFunc("/v1/admin/products", a.handleAdminProducts)
	a.mux.HandleFunc("/v1/admin/products/", a.handleAdminProductScoped)
	a.mux.HandleFunc("/v1/admin/inquiries", a.handleAdminInquiries)
	a.mux.HandleFunc("/v1/admin/inquiries/stream", a.handleInquiryStream)
	a.mux.HandleFunc("/v1/admin/inquiries/", a.handleAdminInquiryScoped)
	a.mux.HandleFunc("/v1/admin/users", a.handleAdminUsers)
	a.mux.HandleFunc("/v1/admin/users/", a.handleAdminUserScoped)
	a.mux.HandleFunc("/v1/admin/audit", a.handleAuditLog)

	// корень — 404
	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a, nil
}

// Handler возвращает http.Handler для сервера.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	// лимитер внутри цепочки: отказы попадают в лог и несут request_id
	h = RateLimit(h, a.rateBurst, a.ratePerSecond)
	h = MaxBodyBytes(h, 1<<20)
	h = SecurityHeaders(h)
	h = CORS(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	// метрики — самым внешним слоем
	return obs.Instrument(h)
}

// audit writes one trail entry on behalf of actor; no-op when the recorder
// is not wired (tests, demo mode without a store).
func (a *API) audit(ctx context.Context, actorID, action, entityType, entityID string, details map[string]any) {
	if a.auditRec == nil {
		return
	}
	a.auditRec.Record(ctx, actorID, action, entityType, entityID, details)
}
