// Command server runs the CineShelf JSON API.
//
// Configuration comes from .env, an optional TOML file (CINESHELF_CONFIG) and
// environment variables; see internal/config.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ItsHarfer/CineShelf/internal/config"
	"github.com/ItsHarfer/CineShelf/internal/server"
)

func main() {
	// === 1. CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. LOGGING ===
	// One logger, injected everywhere below.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	// === 3. SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(context.Background()); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
