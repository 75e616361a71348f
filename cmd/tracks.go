package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/sonic57/internal/formatter"
	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
	"github.com/desertthunder/sonic57/internal/tasks"
)

// TracksList prints the catalog, falling back to the cached copy when the API is down.
func (r *Runner) TracksList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	a, release, err := r.startApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	name := "Catalog"
	tracks := a.Tracks()
	if genre := cmd.String("genre"); genre != "" {
		tracks = a.TracksByGenre(genre)
		name = fmt.Sprintf("Catalog (%s)", genre)
	}

	return r.export(&formatter.Export{Name: name, Tracks: tracks}, format, cmd.String("output"))
}

// TracksGenres prints a per-genre tally of the catalog.
func (r *Runner) TracksGenres(ctx context.Context, cmd *cli.Command) error {
	a, release, err := r.startApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	counts := formatter.GenreCounts(a.Tracks())
	r.writePlainHeader(fmt.Sprintf("Genres (%d)", len(counts)))
	for _, c := range counts {
		r.writePlain("%-24s %d\n", c.Genre, c.Count)
	}
	return nil
}

// TracksAdd ingests a single track built from flags.
func (r *Runner) TracksAdd(ctx context.Context, cmd *cli.Command) error {
	draft := models.TrackDraft{
		Title:    cmd.String("title"),
		Artist:   cmd.String("artist"),
		Album:    cmd.String("album"),
		Genre:    cmd.String("genre"),
		Duration: cmd.String("duration"),
		Cover:    models.ParseMediaRef(cmd.String("cover")),
		Audio:    models.ParseMediaRef(cmd.String("audio")),
	}
	if err := draft.Validate(); err != nil {
		return err
	}

	a, release, err := r.startApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	progress, done := r.printProgress()
	tr, err := a.Ingest(ctx, draft, progress)
	close(progress)
	<-done

	if tr == nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	r.writePlain("✓ Created track %s: %s by %s\n", tr.ID, tr.Title, tr.Artist)
	r.writePlain("  Album: %s · Genre: %s · Duration: %s\n", tr.Album, tr.Genre, tr.Duration)
	r.writePlain("  Cover: %s\n", describeMedia(tr.Cover))
	r.writePlain("  Audio: %s\n", describeMedia(tr.AudioURL))
	if err != nil {
		r.logger.Warn("track created but not saved to library", "error", err)
	}
	return nil
}

// TracksImport ingests every row of a CSV manifest with a worker pool.
func (r *Runner) TracksImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("manifest")
	if path == "" {
		return fmt.Errorf("%w: manifest path", shared.ErrMissingArgument)
	}

	drafts, err := tasks.ParseManifestFile(path)
	if err != nil {
		return err
	}
	r.logger.Info("parsed manifest", "path", path, "rows", len(drafts))

	a, release, err := r.startApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	opts := tasks.BulkImportOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}

	progress, done := r.printProgress()
	result, err := a.Import(ctx, progress, drafts, opts)
	close(progress)
	<-done

	if result != nil {
		r.writePlainHeader("Import Summary")
		r.writePlain("Total:      %d\n", result.Total)
		r.writePlain("Successful: %d\n", result.Successful)
		r.writePlain("Failed:     %d\n", result.Failed)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  ✗ row %d %q: %v\n", res.Index+1, res.Title, res.Error)
			}
		}
	}
	if err != nil {
		return fmt.Errorf("import incomplete: %w", err)
	}
	if result != nil && result.Failed > 0 {
		return fmt.Errorf("%w: %d of %d rows failed", shared.ErrInvalidInput, result.Failed, result.Total)
	}
	return nil
}

// TracksDelete removes a track from the catalog and the local copies of it.
func (r *Runner) TracksDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	a, release, err := r.startApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	title := id
	if tr, ok := a.Find(id); ok {
		title = tr.Title
	}
	if err := a.DeleteTrack(ctx, id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	r.writePlain("✓ Deleted %s\n", title)
	return nil
}

// printProgress drains ingestion updates to the output until the returned
// channel is closed by the caller.
func (r *Runner) printProgress() (chan tasks.ProgressUpdate, <-chan struct{}) {
	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			if u.Total > 0 {
				r.writePlain("[%s %d/%d] %s\n", u.Phase, u.Step, u.Total, u.Message)
			} else {
				r.writePlain("[%s] %s\n", u.Phase, u.Message)
			}
		}
	}()
	return progress, done
}

func (r *Runner) export(export *formatter.Export, format formatter.Format, path string) error {
	if path == "" {
		return formatter.Write(r.output, export, format)
	}

	written, err := formatter.WriteExport(export, format, path)
	if err != nil {
		return err
	}
	size := "?"
	if fi, err := os.Stat(written); err == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}
	r.writePlain("✓ Exported %d tracks to %s (%s)\n", len(export.Tracks), written, size)
	return nil
}

// describeMedia shortens embedded media to its type and size.
func describeMedia(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	mediaType, _, _ := strings.Cut(strings.TrimPrefix(s, "data:"), ";")
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return fmt.Sprintf("embedded %s, %s", mediaType, humanize.Bytes(uint64(len(s))))
}
