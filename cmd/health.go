package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
)

type healthChecker interface {
	Health(ctx context.Context) (*models.HealthResponse, error)
}

// Health reports the catalog API's database health.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	hc, ok := r.catalog.(healthChecker)
	if !ok {
		return fmt.Errorf("%w: catalog source has no health endpoint", shared.ErrNotImplemented)
	}

	resp, err := hc.Health(ctx)
	if resp == nil && err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if cmd.Bool("json") {
		if werr := r.writeJSON(resp, true); werr != nil {
			return werr
		}
		return err
	}

	r.writePlainHeader("Catalog Health")
	r.writePlain("Status:   %s\n", resp.Status)
	r.writePlain("Message:  %s\n", resp.Message)
	if resp.ServerTime != "" {
		r.writePlain("Time:     %s\n", resp.ServerTime)
	}
	if resp.SQLiteVersion != "" {
		r.writePlain("SQLite:   %s\n", resp.SQLiteVersion)
	}
	if resp.ErrorDetail != "" {
		r.writePlain("Detail:   %s\n", resp.ErrorDetail)
	}
	return err
}

// Seed asks the catalog to insert the default tracks when it is empty.
func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) error {
	resp, err := r.catalog.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	if resp.Count > 0 {
		r.writePlain("✓ %s (%d tracks)\n", resp.Message, resp.Count)
	} else {
		r.writePlain("✓ %s\n", resp.Message)
	}
	return nil
}
