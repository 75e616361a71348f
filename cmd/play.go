package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/playback"
	"github.com/desertthunder/sonic57/internal/shared"
)

// pollInterval is how often the play command reports position.
var pollInterval = 500 * time.Millisecond

// Play plays a track on the speaker and reports progress until it ends or
// the command is interrupted.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("no-advance") {
		r.config.Playback.AutoAdvance = false
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, release, err := r.startApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	var (
		track models.Track
		ok    bool
	)
	if id := cmd.StringArg("id"); id != "" {
		track, ok = a.Find(id)
		if !ok {
			return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
		}
	} else if track, ok = a.Featured(); !ok {
		return fmt.Errorf("%w: catalog is empty", shared.ErrTrackNotFound)
	}

	if err := a.Select(ctx, track); err != nil && !errors.Is(err, shared.ErrSuperseded) {
		return err
	}

	return r.watch(ctx, a.Transport())
}

// watch prints one line per track change and returns once playback stops.
func (r *Runner) watch(ctx context.Context, t *playback.Transport) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastID string
	for {
		s := t.Snapshot()
		if s.Track == nil || (!s.Playing && !s.Loading) {
			if s.Track != nil {
				r.writePlain("\n■ %s\n", s.Track.Title)
			}
			return nil
		}
		if s.Track.ID != lastID {
			lastID = s.Track.ID
			r.writePlain("\n▶ %s · %s\n", s.Track.Title, s.Track.Artist)
		}
		if !r.quiet {
			r.writePlain("\r  %s / %s", shared.FormatDuration(s.Position), shared.FormatDuration(s.Duration))
		}

		select {
		case <-ctx.Done():
			r.writePlain("\n")
			return nil
		case <-ticker.C:
		}
	}
}
