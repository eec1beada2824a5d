package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/FACorreiaa/auditoria/cmd/app"
	"github.com/FACorreiaa/auditoria/pkg/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to load config", "error", err)
		fmt.Fprintf(os.Stdout, "Ocorreu um erro durante a análise: %v\n", err)
		return 1
	}

	logger := newLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies
	deps, err := app.InitDependencies(cfg, logger, os.Stdout)
	if err != nil {
		logger.Error("failed to initialize dependencies", "error", err)
		app.PrintError(os.Stdout, cfg.Input.File, err)
		return 1
	}
	defer deps.Cleanup()

	if err := app.Run(ctx, deps); err != nil {
		app.PrintError(os.Stdout, cfg.Input.File, err)
		return 1
	}

	return 0
}

// newLogger builds the process logger; logs go to stderr so stdout carries only the report.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
