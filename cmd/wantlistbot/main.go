// Command wantlistbot checks a Discogs want-list for marketplace offers below
// the price ceilings stored in the item notes. It loads configuration,
// validates it, wires dependencies, sets up signal handling, and starts the
// application in the configured mode.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alanyoungcy/wantlistbot/internal/app"
	"github.com/alanyoungcy/wantlistbot/internal/config"
	"github.com/alanyoungcy/wantlistbot/internal/crypto"
)

const defaultConfigPath = "config.toml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	interactive := flag.Bool("i", false, "prompt for the ceiling of items without one and store it in their notes")
	mode := flag.String("mode", "", "override the configured mode (once or watch)")
	encryptOut := flag.String("encrypt-token", "", "encrypt WANTBOT_DISCOGS_TOKEN with WANTBOT_DISCOGS_TOKEN_PASSWORD into this file and exit")
	flag.Parse()

	// Logs go to stderr; stdout carries the report and the prompt.
	logger := newLogger("info")
	slog.SetDefault(logger)

	// A missing default config file is fine: env and defaults still apply.
	path := *configPath
	if path == defaultConfigPath {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	if *encryptOut != "" {
		if err := encryptToken(cfg, *encryptOut); err != nil {
			fmt.Fprintf(os.Stderr, "encrypt token: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "encrypted token written to %s\n", *encryptOut)
		return
	}

	if *mode != "" {
		cfg.Mode = *mode
	}
	if *interactive {
		cfg.Match.Interactive = true
	}

	logger = newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("wantlist bot starting",
		slog.String("mode", cfg.Mode),
		slog.String("config", path),
		slog.Any("settings", config.RedactedConfig(cfg)),
	)

	application := app.New(cfg, logger)
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		// context.Canceled is expected on clean shutdown.
		if errors.Is(err, context.Canceled) {
			logger.Info("application shut down gracefully")
		} else {
			logger.Error("application exited with error",
				slog.String("error", err.Error()),
			)
			application.Close()
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}

	logger.Info("wantlist bot stopped")
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func encryptToken(cfg *config.Config, out string) error {
	blob, err := crypto.EncryptToken(cfg.Discogs.Token, cfg.Discogs.TokenPassword)
	if err != nil {
		return err
	}
	return os.WriteFile(out, blob, 0o600)
}
