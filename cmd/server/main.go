package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docqa/internal/api"
	"github.com/dgallion1/docqa/internal/config"
	"github.com/dgallion1/docqa/internal/pipeline"
	"github.com/dgallion1/docqa/internal/qa"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize scorer.
	stats := qa.NewStats(time.Hour)
	scorer, err := qa.Open(cfg.ScorerOptions(stats))
	if err != nil {
		log.Error("scorer unavailable", "backend", cfg.ScorerBackend, "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	pipe := pipeline.New(scorer, log, cfg.SectionConfig(), cfg.ScorerConcurrency)
	svc := pipeline.NewService(pipe, cfg.DocumentTTL, log)
	svc.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(svc, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		svc.Stop()
		qa.Close(scorer)
	}()

	log.Info("starting docqa", "port", cfg.Port, "backend", cfg.ScorerBackend, "concurrency", cfg.ScorerConcurrency)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
