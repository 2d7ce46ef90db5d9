// Package server sets up the HTTP server, router, and all route definitions.
//
// It is the composition root: config in, a running server out. Every
// dependency is built in New and handed down, so no package below this one
// reads configuration or global state.
//
// ROUTES:
//
//	POST /api/rpc              → JSON-RPC 2.0 endpoint (single or batch)
//	GET  /api/oauth/login      → redirect to the identity provider
//	GET  /api/oauth/callback   → finish sign-in, set the session cookie
//	GET  /healthz              → liveness + storage status
//	GET  /metrics              → Prometheus scrape endpoint
//	GET  /*                    → browser client (static files, index.html fallback)
//
// MIDDLEWARE ORDER MATTERS:
// RequestID and RealIP run first so every later layer sees the request id and
// the client address. Logger and Metrics wrap Recoverer so a recovered panic
// is still logged and counted as a 500.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/gaia-lore/internal/auth"
	"github.com/sakif/gaia-lore/internal/config"
	"github.com/sakif/gaia-lore/internal/handler"
	"github.com/sakif/gaia-lore/internal/middleware"
	"github.com/sakif/gaia-lore/internal/notify"
	"github.com/sakif/gaia-lore/internal/ratelimit"
	"github.com/sakif/gaia-lore/internal/repository"
	"github.com/sakif/gaia-lore/internal/repository/sqldb"
	"github.com/sakif/gaia-lore/internal/rpc"
	"github.com/sakif/gaia-lore/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The server owns the store and the Redis client and closes both on
// shutdown.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	store   repository.Store
	limiter *ratelimit.RedisCounter
}

// New builds the server from cfg. A database that cannot be reached does not
// stop startup: the server runs on the offline store and reports storage as
// unavailable. A Redis that cannot be reached disables rate limiting.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  OpenStore(ctx, cfg.Database, logger),
	}
	middleware.SetStorageAvailable(s.store.Available())

	if cfg.Redis.Addr != "" {
		limiter, err := ratelimit.NewRedis(ctx, ratelimit.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Warn("redis unavailable, rate limiting disabled", slog.String("error", err.Error()))
		} else {
			s.limiter = limiter
		}
	}

	if err := s.setupRoutes(); err != nil {
		s.close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// OpenStore connects to the configured database, falling back to the
// offline store when the URL is empty or the connection fails.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) repository.Store {
	if cfg.URL == "" {
		logger.Warn("database.url not set, running without storage")
		return repository.Offline()
	}

	db, err := sqldb.Open(ctx, cfg.URL, sqldb.Options{
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
		ConnMaxLife:  cfg.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("database unavailable, running without storage", slog.String("error", err.Error()))
		return repository.Offline()
	}

	logger.Info("database connected", slog.String("dialect", string(db.Dialect())))
	return db
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() error {
	cfg := s.config
	store := s.store

	// === Services ===
	procedures := &handler.Procedures{
		Characters:       service.NewCharacterService(store, s.logger),
		Factions:         service.NewFactionService(store, s.logger),
		Locations:        service.NewLocationService(store, s.logger),
		Events:           service.NewEventService(store, s.logger),
		Concepts:         service.NewConceptService(store, s.logger),
		Glitches:         service.NewGlitchService(store, s.logger),
		Search:           service.NewSearchService(store, s.logger),
		StorageAvailable: store.Available,
		Notifier: notify.New(notify.Config{
			URL: cfg.Notify.APIURL,
			Key: cfg.Notify.APIKey,
		}, s.logger),
	}

	dispatcher := rpc.NewDispatcher(s.logger, rpc.WithStorageStatus(store.Available))
	procedures.Register(dispatcher)

	// === Auth ===
	// Without a usable secret and app id there are no sessions: the OAuth
	// routes are not mounted and every request stays anonymous.
	var oauthHandler *handler.OAuthHandler
	var authService *service.AuthService
	sessions, err := auth.NewSessionService(cfg.Auth.JWTSecret, cfg.Auth.AppID, cfg.Auth.SessionTTL)
	if err != nil {
		if cfg.Server.IsProduction() {
			return fmt.Errorf("session configuration: %w", err)
		}
		s.logger.Warn("authentication disabled", slog.String("reason", err.Error()))
	} else {
		provider := auth.NewProvider(auth.ProviderConfig{
			ServerURL: cfg.OAuth.ServerURL,
			PortalURL: cfg.OAuth.PortalURL,
			AppID:     cfg.Auth.AppID,
			Timeout:   cfg.OAuth.Timeout,
		})
		authService = service.NewAuthService(store, sessions, provider, cfg.Auth.OwnerOpenID, s.logger)
		oauthHandler = handler.NewOAuthHandler(provider, authService, sessions.TTL(), s.logger)
	}

	var pinger handler.Pinger
	if db, ok := store.(*sqldb.DB); ok {
		pinger = db
	}
	healthHandler := handler.NewHealthHandler(procedures, pinger, s.logger)

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics())
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if authService != nil {
		s.router.Use(auth.Authenticate(authService, s.logger))
	}

	// === Operational Routes ===
	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	// === API Routes ===
	s.router.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(middleware.RateLimit(s.limiter, middleware.RateLimitConfig{
				RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
				Burst:             cfg.RateLimit.Burst,
			}, s.logger))
		}

		r.Post("/rpc", dispatcher.ServeHTTP)

		if oauthHandler != nil {
			r.Get("/oauth/login", oauthHandler.HandleLogin)
			r.Get("/oauth/callback", oauthHandler.HandleCallback)
		}
	})

	// === Browser Client ===
	spa, err := handler.NewSPAHandler(cfg.Server.StaticDir, handler.SPAData{
		Title:     "GAIA | Archivo del Universo",
		LoginPath: "/api/oauth/login",
		RPCPath:   "/api/rpc",
	}, s.logger)
	if err != nil {
		s.logger.Warn("browser client not served",
			slog.String("static_dir", cfg.Server.StaticDir),
			slog.String("error", err.Error()),
		)
		return nil
	}
	s.router.Handle("/*", spa)

	return nil
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to server.shutdown_timeout and closes the store.
func (s *Server) Start() error {
	defer s.close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("environment", s.config.Server.Environment),
			slog.Bool("storage", s.store.Available()),
			slog.Bool("rate_limit", s.limiter != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		timeout := s.config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func (s *Server) close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("closing store", slog.String("error", err.Error()))
	}
	if s.limiter != nil {
		if err := s.limiter.Close(); err != nil {
			s.logger.Error("closing redis", slog.String("error", err.Error()))
		}
	}
}
