package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/sonic57/internal/shared"
)

// Setup writes config.toml when missing, migrates the database and seeds the
// local library.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
		} else {
			config = loaded
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}
	r.config = config

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := shared.OpenDatabase(ctx, config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	kv, release, err := r.openKV(ctx)
	if err != nil {
		return err
	}
	defer release()

	lib, err := r.openLibrary(ctx, kv)
	if err != nil {
		return err
	}
	saved, err := lib.List(ctx)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Database ready: %s\n", config.Database.Path)
	r.writePlain("✓ Library ready (%s backend, %d saved)\n", config.Library.Backend, len(saved))
	r.writePlainln("Next steps:")
	r.writePlain("1. Run '%s serve --seed' to start the catalog API\n", shared.AppName)
	r.writePlain("2. Run '%s tui' to browse and play\n", shared.AppName)
	return nil
}

// MigrationStatus lists every migration and whether it has been applied.
func (r *Runner) MigrationStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	statuses, err := shared.MigrationStatuses(ctx, db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, s := range statuses {
		mark := " "
		if s.Applied {
			mark = "✓"
		}
		r.writePlain("[%s] %03d %s\n", mark, s.Version, s.Name)
	}
	return nil
}

// Rollback undoes the newest applied migration.
func (r *Runner) Rollback(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(ctx, db); err != nil {
		return err
	}
	r.writePlain("✓ Rolled back latest migration\n")
	return nil
}
