package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/csmith/envflag/v2"

	"github.com/handiism/bandcamp-fetch/internal/client"
	"github.com/handiism/bandcamp-fetch/internal/config"
	"github.com/handiism/bandcamp-fetch/internal/tui"
)

var (
	configPath = flag.String("config", config.DefaultPath(), "Path to the settings file (TOML, JSON or YAML)")
	cookie     = flag.String("cookie", "", "Cookie header of a logged-in browser session (overrides settings)")
	logFile    = flag.String("log-file", "", "Write debug logs to this file")
)

func main() {
	envflag.Parse()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			slog.Error("Failed to open log file", "path", *logFile, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load settings", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if *cookie != "" {
		settings.Cookie = *cookie
	}

	c, err := client.NewFromSettings(settings, logger)
	if err != nil {
		slog.Error("Failed to create client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	fan, err := c.CurrentFan(ctx)
	cancel()
	name := ""
	if err != nil {
		logger.Warn("Could not identify fan", "error", err)
	} else if fan != nil {
		name = fan.Username
	}

	if err := tui.Run(settings, c, name); err != nil {
		slog.Error("TUI failed", "error", err)
		os.Exit(1)
	}
}
