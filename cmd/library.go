package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/sonic57/internal/formatter"
	"github.com/desertthunder/sonic57/internal/shared"
)

// LibraryList prints saved tracks. It reads local storage only.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	kv, release, err := r.openKV(ctx)
	if err != nil {
		return err
	}
	defer release()

	lib, err := r.openLibrary(ctx, kv)
	if err != nil {
		return err
	}
	tracks, err := lib.List(ctx)
	if err != nil {
		return err
	}
	return formatter.Write(r.output, &formatter.Export{Name: "Library", Tracks: tracks}, format)
}

// LibraryAdd saves a catalog track by id.
func (r *Runner) LibraryAdd(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	a, release, err := r.startApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	tr, ok := a.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	added, err := a.AddToLibrary(ctx, tr)
	if err != nil {
		return err
	}
	if added {
		r.writePlain("✓ Saved %s to library\n", tr.Title)
	} else {
		r.writePlain("%s is already in the library\n", tr.Title)
	}
	return nil
}

// LibraryRemove drops a saved track by id.
func (r *Runner) LibraryRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	kv, release, err := r.openKV(ctx)
	if err != nil {
		return err
	}
	defer release()

	lib, err := r.openLibrary(ctx, kv)
	if err != nil {
		return err
	}
	removed, err := lib.Remove(ctx, id)
	if err != nil {
		return err
	}
	if removed {
		r.writePlain("✓ Removed %s from library\n", id)
	} else {
		r.writePlain("%s was not in the library\n", id)
	}
	return nil
}

// LibraryExport writes the library to a file.
func (r *Runner) LibraryExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	kv, release, err := r.openKV(ctx)
	if err != nil {
		return err
	}
	defer release()

	lib, err := r.openLibrary(ctx, kv)
	if err != nil {
		return err
	}
	tracks, err := lib.List(ctx)
	if err != nil {
		return err
	}

	path := cmd.String("output")
	if path == "" {
		path = "library" + format.Ext()
	}
	return r.export(&formatter.Export{Name: "Library", Tracks: tracks}, format, path)
}
