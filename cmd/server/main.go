// cmd/server is the application entry point.
// It wires together all layers and starts the HTTP server.
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

	"github.com/campushub/clubevents/internal/auth"
	"github.com/campushub/clubevents/internal/config"
	"github.com/campushub/clubevents/internal/database"
	"github.com/campushub/clubevents/internal/handler"
	"github.com/campushub/clubevents/internal/repository"
	"github.com/campushub/clubevents/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		clubStore         repository.ClubStore
		eventStore        repository.EventStore
		registrationStore repository.RegistrationStore
		userStore         repository.UserStore
	)
	switch cfg.Storage {
	case "memory":
		mem := repository.NewMemory()
		clubStore, eventStore = mem.Clubs(), mem.Events()
		registrationStore, userStore = mem.Registrations(), mem.Users()
		slog.Warn("using in-memory storage; data will not survive restarts")
	default:
		pool, err := database.NewPool(ctx, cfg)
		if err != nil {
			slog.Error("database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := database.InitSchema(initCtx, pool); err != nil {
			slog.Error("schema", "error", err)
			os.Exit(1)
		}
		slog.Info("connected to postgres", "db", cfg.DBName)

		clubStore = repository.NewPostgresClubs(pool)
		eventStore = repository.NewPostgresEvents(pool)
		registrationStore = repository.NewPostgresRegistrations(pool)
		userStore = repository.NewPostgresUsers(pool)
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	clubSvc := service.NewClubService(clubStore, userStore)
	eventSvc := service.NewEventService(eventStore, clubStore)
	registrationSvc := service.NewRegistrationService(registrationStore, eventStore)

	api := handler.NewAPI(clubSvc, eventSvc, registrationSvc, tokens)
	router := api.Router(handler.RouterConfig{
		RateRPS:   cfg.RateRPS,
		RateBurst: cfg.RateBurst,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in a background goroutine so we can listen for the shutdown
	// signal.
	go func() {
		slog.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
