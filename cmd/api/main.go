// Package main is the entry point for the Zakat reminder API server.
package main

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

	"github.com/yousefshawky/zakatyyy/internal/api"
	"github.com/yousefshawky/zakatyyy/internal/config"
	"github.com/yousefshawky/zakatyyy/internal/database"
	"github.com/yousefshawky/zakatyyy/internal/gold"
	"github.com/yousefshawky/zakatyyy/internal/logger"
	"github.com/yousefshawky/zakatyyy/internal/mailer"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	log.Info("starting zakat reminder service",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
		slog.Bool("reminders_enabled", cfg.RemindersEnabled()),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	// Open database and apply migrations
	db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// External collaborators
	goldClient := gold.NewClient(cfg.GoldAPIKey)
	if cfg.GoldAPIURL != "" {
		goldClient.BaseURL = cfg.GoldAPIURL
	}
	nisaab := gold.NewService(db, goldClient, log)

	upserter := mailer.NewClient(cfg.MailchimpAPIKey, cfg.MailchimpServerPrefix, cfg.MailchimpListID)
	if !upserter.Configured() {
		log.Warn("mailing list credentials missing; reminder signups are disabled")
	}

	// HTTP server
	handlers := api.NewHandlers(db, nisaab, upserter, cfg, log)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server failure
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		log.Info("shutting down", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	log.Info("server stopped")
	return nil
}
