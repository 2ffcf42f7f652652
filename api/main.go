package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rogerio-castellano/store-dashboard/internal/backend"
	"github.com/rogerio-castellano/store-dashboard/internal/config"
	"github.com/rogerio-castellano/store-dashboard/internal/db"
	api "github.com/rogerio-castellano/store-dashboard/internal/http"
	"github.com/rogerio-castellano/store-dashboard/internal/http/handlers"
	rl "github.com/rogerio-castellano/store-dashboard/internal/http/rate_limiter"
	"github.com/rogerio-castellano/store-dashboard/internal/redissvc"
	"github.com/rogerio-castellano/store-dashboard/internal/repo"
	"github.com/rogerio-castellano/store-dashboard/internal/session"
	"github.com/rogerio-castellano/store-dashboard/internal/ui"
)

func main() {
	cfg, err := config.Load(".env", os.Getenv("DASHBOARD_CONFIG"))
	if err != nil {
		log.Fatal("❌ Invalid configuration:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)
	if err != nil {
		log.Fatal("❌ Invalid backend URL:", err)
	}

	store, closeStore, err := openCredentialStore(ctx, cfg)
	if err != nil {
		log.Fatal("❌ Could not open credential store:", err)
	}
	defer closeStore()

	msg := ui.NewMessages(cfg.UI.Language, cfg.UI.Currency)
	renderer, err := ui.NewRenderer(msg)
	if err != nil {
		log.Fatal("❌ Could not load templates:", err)
	}

	manager := session.NewManager(client, store, msg, session.Options{
		StorageKey: cfg.Session.StorageKey,
		TTL:        cfg.Session.TTL,
	})
	limiter := rl.New(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)

	go manager.StartCleanupLoop(ctx, time.Minute, cfg.Session.IdleTimeout)
	go limiter.StartVisitorCleanupLoop(ctx)

	api.SetSessionManager(manager)
	api.SetLoginLimiter(limiter)
	api.SetCookie(cfg.Server.CookieName, cfg.Server.CookieSecure)
	handlers.SetRenderer(renderer)
	handlers.SetMessages(msg)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("✅ Dashboard running on %s (backend %s, %s credential store)", cfg.Server.Addr, cfg.Backend.URL, cfg.Session.Store)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("👋 Dashboard stopped")
}

// openCredentialStore builds the configured credential repository and the function that releases it.
func openCredentialStore(ctx context.Context, cfg config.Config) (repo.CredentialRepository, func(), error) {
	switch cfg.Session.Store {
	case "memory":
		return repo.NewInMemoryCredentialRepository(), func() {}, nil

	case "redis":
		rs, err := redissvc.Connect(ctx, redissvc.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return repo.NewRedisCredentialRepository(rs.Rdb()), func() { rs.Close() }, nil

	case "postgres", "sqlite", "mysql":
		database, err := db.Connect(cfg.Session.Store, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		dialect, err := repo.DialectFor(cfg.Session.Store)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		store, err := repo.NewSQLCredentialRepository(database, dialect)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		return store, func() { database.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown credential store %q", cfg.Session.Store)
}
