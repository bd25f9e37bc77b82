package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"freshport.io/internal/audit"
	"freshport.io/internal/auth"
	"freshport.io/internal/catalog"
	"freshport.io/internal/httpapi"
	"freshport.io/internal/inquiry"
	"freshport.io/internal/obs"
	"freshport.io/internal/ratelimit"
	"freshport.io/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	// Инициализация observability (регистрация метрик, JSON-логгер и т.п.)
	obs.Init()
	obs.InitBuildInfo(version, commit)

	secret := os.Getenv("FRESHPORT_AUTH_SECRET")
	if secret == "" {
		log.Fatal("FRESHPORT_AUTH_SECRET is required")
	}

	// Подключение к БД (если задан DSN); без DSN работаем в demo-режиме на
	// in-memory хранилищах
	var db *sql.DB
	if dsn := os.Getenv("FRESHPORT_PG_DSN"); dsn != "" {
		var err error
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	} else {
		log.Println("FRESHPORT_PG_DSN not set, using in-memory stores (demo mode)")
	}

	var (
		userStore    auth.UserStore
		catalogStore catalog.Store
		inquiryStore inquiry.Store
		auditStore   audit.Store
		limiter      ratelimit.Limiter
	)
	if db != nil {
		userStore = auth.NewPGUserStore(db)
		catalogStore = catalog.NewPGStore(db)
		inquiryStore = inquiry.NewPGStore(db)
		auditStore = audit.NewPGStore(db)
		limiter = ratelimit.NewPGLimiter(db)
	} else {
		userStore = auth.NewMemoryUserStore()
		catalogStore = catalog.NewMemoryStore()
		inquiryStore = inquiry.NewMemoryStore()
		auditStore = audit.NewMemoryStore()
		limiter = ratelimit.NewMemory()
	}

	recorder := audit.NewRecorder(auditStore)

	issuer, err := auth.NewTokenIssuer(secret)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}
	authSvc, err := auth.NewService(userStore, issuer, auth.WithAudit(recorder))
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	catalogSvc, err := catalog.NewService(catalogStore)
	if err != nil {
		log.Fatalf("catalog service: %v", err)
	}
	events := stream.New()
	inquirySvc, err := inquiry.NewService(inquiryStore, events)
	if err != nil {
		log.Fatalf("inquiry service: %v", err)
	}

	api, err := httpapi.New(httpapi.Config{
		Ready:        httpapi.ReadyProbe{DB: db},
		Version:      version,
		Auth:         authSvc,
		Catalog:      catalogSvc,
		Inquiries:    inquirySvc,
		Limiter:      limiter,
		Audit:        recorder,
		Stream:       events,
		CookieSecure: os.Getenv("FRESHPORT_COOKIE_SECURE") != "false",
	})
	if err != nil {
		log.Fatalf("http api: %v", err)
	}

	addr := os.Getenv("FRESHPORT_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(), // уже обёрнут метриками в httpapi
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// SSE-поток держит соединение дольше обычного запроса
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting freshport-api %s on %s", version, srv.Addr)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
