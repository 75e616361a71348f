package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/sonic57/internal/library"
	"github.com/desertthunder/sonic57/internal/shared"
)

// CacheShow prints the offline catalog copy and its stored size.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	kv, release, err := r.openKV(ctx)
	if err != nil {
		return err
	}
	defer release()

	raw, err := kv.Get(ctx, library.CatalogKey)
	if errors.Is(err, shared.ErrKeyNotFound) {
		r.writePlain("No cached catalog\n")
		return nil
	}
	if err != nil {
		return err
	}

	tracks, err := library.NewCatalogCache(kv).Load(ctx)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Cached Catalog (%d tracks, %s)", len(tracks), humanize.Bytes(uint64(len(raw)))))
	for _, t := range tracks {
		r.writePlain("%4s  %-28s %-20s %s\n", t.ID, t.Title, t.Artist, t.Duration)
	}
	return nil
}

// CacheClear removes the offline catalog copy. The library is untouched.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	kv, release, err := r.openKV(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := kv.Delete(ctx, library.CatalogKey); err != nil && !errors.Is(err, shared.ErrKeyNotFound) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	r.writePlain("✓ Catalog cache cleared\n")
	return nil
}
