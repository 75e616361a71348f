package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/sonic57/internal/repositories"
	"github.com/desertthunder/sonic57/internal/server"
	"github.com/desertthunder/sonic57/internal/shared"
)

// Serve runs the catalog API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := shared.OpenDatabase(ctx, r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := repositories.NewTrackRepository(db)
	if cmd.Bool("seed") {
		res, err := repo.Seed(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		r.logger.Info("seed", "seeded", res.Seeded, "count", res.Count)
	}

	router := server.NewRouter(server.OptionsFromConfig(cfg, repo, r.logger))
	srv := server.New(cfg, router, r.logger)

	if cmd.Bool("open") {
		go func() {
			time.Sleep(250 * time.Millisecond)
			if err := shared.OpenBrowser("http://" + cfg.Addr() + "/"); err != nil {
				r.logger.Warn("could not open browser", "error", err)
			}
		}()
	}

	return srv.Run(ctx)
}
