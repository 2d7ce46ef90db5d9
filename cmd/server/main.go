// Package main is the entry point for the GAIA lore server.
//
// main stays minimal: load configuration, build the logger, hand both to
// internal/server. Everything else lives in the internal packages.
//
// Configuration comes from config.yaml (or the file named by GAIA_CONFIG)
// and the environment; see internal/config for every key.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/sakif/gaia-lore/internal/config"
	"github.com/sakif/gaia-lore/internal/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("GAIA_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger builds the process logger: text for humans, JSON for log
// collectors.
func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
