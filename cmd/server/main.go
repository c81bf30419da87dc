package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/josh-w-mason/twitter-clone/internal/api/middleware"
	"github.com/josh-w-mason/twitter-clone/internal/api/routes"
	"github.com/josh-w-mason/twitter-clone/internal/atproto/appview"
	"github.com/josh-w-mason/twitter-clone/internal/atproto/auth"
	"github.com/josh-w-mason/twitter-clone/internal/config"
	"github.com/josh-w-mason/twitter-clone/internal/core/feedcache"
	"github.com/josh-w-mason/twitter-clone/internal/core/feeds"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("Failed to load .env file", slog.Any("err", err))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", slog.Any("err", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if cfg.IsDevEnv && cfg.TokenSecret == "" {
		slog.Warn("TOKEN_SECRET not set: access token signatures are NOT verified (dev mode)")
	}

	// Remote tweet API, one client per viewer over a shared transport
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	clients := appview.NewClientFactory(cfg.AppViewURL, httpClient)

	// Per-session feed caches
	registry := feedcache.NewRegistry(cfg.MaxSessions, cfg.SessionTTL, logger)
	feedService := feeds.NewService(clients, cfg.PageSize, logger)

	tokens := auth.NewParser([]byte(cfg.TokenSecret), cfg.IsDevEnv && cfg.TokenSecret == "").
		WithIssuer(cfg.TokenIssuer)
	sessions, err := middleware.NewSessionManager(cfg.SessionSecret, registry, tokens, !cfg.IsDevEnv)
	if err != nil {
		slog.Error("Failed to initialize sessions", slog.Any("err", err))
		os.Exit(1)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	defer rateLimiter.Stop()

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(cfg.RequestTimeout + 5*time.Second))

	routes.RegisterWebRoutes(r, feedService, sessions, rateLimiter)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("twitter-clone web client starting",
			slog.String("addr", cfg.ListenAddr),
			slog.String("api", cfg.AppViewURL),
			slog.Bool("dev", cfg.IsDevEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", slog.Any("err", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", slog.Any("err", err))
	}
}
