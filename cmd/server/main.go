package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Aeyroxx/lace-allure-queue-system/internal/broadcast"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/config"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/logging"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/queue"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/server"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/storage"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/tts"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/version"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupStore selects the persistence backend and the retention policy that
// goes with it. A failed Mongo connection at startup falls back to the file
// backend for the remainder of the process lifetime; it is not re-attempted.
func setupStore(cfg *config.Config, clock clockwork.Clock) (storage.Store, queue.RetentionPolicy) {
	if cfg.UseMongo {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := storage.NewMongoStore(ctx, cfg.MongoURL, cfg.MongoDatabase, clock)
		if err == nil {
			slog.Info("Using MongoDB for data storage", "database", cfg.MongoDatabase)
			return store, queue.HideDoneRetention{}
		}
		slog.Warn("MongoDB unavailable, falling back to JSON files", "error", err)
	}

	store, err := storage.NewFileStore(cfg.DataDir, clock)
	if err != nil {
		slog.Error("Failed to initialize file storage", "error", err)
		os.Exit(1)
	}
	slog.Info("Using JSON files for data storage", "dir", cfg.DataDir)
	return store, queue.TimeBoxedRetention{Window: cfg.RetentionWindow}
}

func runGracefulShutdown(srv *server.Server, hub *broadcast.Hub) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		hub.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "build", version.Get().String())

	store, policy := setupStore(cfg, clock)
	defer func() {
		if mongoStore, ok := store.(*storage.MongoStore); ok {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoStore.Close(ctx)
		}
	}()

	hub := broadcast.NewHub(nil, clock)
	queueSvc := queue.NewService(store, hub, policy, clock)
	// Newcomers catch up from the same retention-filtered read the API uses
	hub.SetSnapshot(queueSvc.GetQueue)

	audio, err := tts.NewGenerator(cfg.TTSCommand, cfg.AudioDir, clock)
	if err != nil {
		slog.Error("Failed to initialize audio generator", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(cfg, queueSvc, hub, store, audio)

	done := runGracefulShutdown(srv, hub)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
