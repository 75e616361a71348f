package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/sonic57/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	if p, ok := os.LookupEnv("SONIC57_CONFIG"); ok {
		configPath = p
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	if err := config.ApplyEnv(); err != nil {
		logger.Fatalf("configuration error: %v", err)
	}
	if err := config.Validate(); err != nil {
		logger.Fatalf("configuration error: %v", err)
	}

	if config.Log.File != "" && (len(os.Args) < 2 || os.Args[1] != "tui") {
		fileLogger, closer, err := shared.NewFileLogger(config.Log.File)
		if err != nil {
			logger.Fatalf("failed to open log file: %v", err)
		}
		defer closer.Close()
		logger = fileLogger
	}

	if lvl, err := shared.ParseLogLevel(config.Log.Level); err == nil {
		shared.SetLogLevel(logger, lvl)
	} else {
		logger.Warn("ignoring log level", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     shared.AppName,
		Usage:    "Sonic-57 catalog service and terminal player",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
