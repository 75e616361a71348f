package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/sonic57/internal/app"
	"github.com/desertthunder/sonic57/internal/catalog"
	"github.com/desertthunder/sonic57/internal/library"
	"github.com/desertthunder/sonic57/internal/media"
	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/playback"
	"github.com/desertthunder/sonic57/internal/shared"
	"github.com/desertthunder/sonic57/internal/storage"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Anything left nil in [RunnerOpts] is built from the config on first use.
type Runner struct {
	config     *shared.Config
	catalog    app.CatalogSource
	kv         storage.Store
	backend    playback.Backend
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	quiet      bool

	// ownCatalog is set when catalog was built here and follows SetLogger.
	ownCatalog bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Catalog    app.CatalogSource
	KV         storage.Store
	Backend    playback.Backend
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:     opts.Config,
		kv:         opts.KV,
		backend:    opts.Backend,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		quiet:      opts.Output != os.Stdout,
	}

	r.catalog = opts.Catalog
	if r.catalog == nil {
		r.catalog = r.newCatalogClient()
		r.ownCatalog = true
	}
	return r
}

func (r *Runner) newCatalogClient() *catalog.Client {
	return catalog.NewClient(catalog.Options{
		BaseURL:    r.config.Client.APIURL,
		HTTPClient: r.httpClient,
		Timeout:    r.config.Client.Timeout(),
		AdminToken: r.config.Client.AdminToken,
		Logger:     r.logger,
	})
}

// SetLogger replaces the logger used by commands started after the call.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if r.ownCatalog {
		r.catalog = r.newCatalogClient()
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, seedCommand, healthCommand, tracksCommand, libraryCommand, cacheCommand, playCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openKV returns the client state store and a func that releases it.
func (r *Runner) openKV(ctx context.Context) (storage.Store, func(), error) {
	if r.kv != nil {
		return r.kv, func() {}, nil
	}
	kv, err := storage.Open(ctx, r.config.Library)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open library storage: %w", err)
	}
	return kv, func() {
		if err := kv.Close(); err != nil {
			r.logger.Warn("failed to close library storage", "error", err)
		}
	}, nil
}

func (r *Runner) openLibrary(ctx context.Context, kv storage.Store) (*library.Store, error) {
	var defaults []models.Track
	if r.config.Library.SeedDefaults {
		defaults = library.DefaultTracks(library.FirstRunSize)
	}
	lib := library.NewStore(kv, library.Options{Defaults: defaults, Logger: r.logger})
	if err := lib.Initialize(ctx); err != nil {
		return nil, err
	}
	return lib, nil
}

func (r *Runner) fetcher() *media.Fetcher {
	client := r.httpClient
	if client == nil {
		client = media.NewHTTPClient(r.config.Playback.FetchTimeout())
	}
	return media.NewFetcher(media.FetcherOptions{
		HTTPClient: client,
		MaxBytes:   r.config.Playback.MaxMediaBytes(),
	})
}

func (r *Runner) resolver() (*media.Resolver, error) {
	opts := media.ResolverOptions{
		Fetcher:  r.fetcher(),
		MaxBytes: r.config.Playback.MaxMediaBytes(),
		Logger:   r.logger,
	}
	if r.config.Storage.Enabled {
		store, err := media.NewObjectStore(r.config.Storage)
		if err != nil {
			return nil, err
		}
		opts.Uploader = store
	}
	return media.NewResolver(opts), nil
}

func (r *Runner) playbackBackend() playback.Backend {
	if r.backend != nil {
		return r.backend
	}
	return playback.NewBeepBackend(r.fetcher())
}

// newApp wires the application state layer without starting it.
func (r *Runner) newApp(ctx context.Context) (*app.App, func(), error) {
	kv, closeKV, err := r.openKV(ctx)
	if err != nil {
		return nil, nil, err
	}
	lib, err := r.openLibrary(ctx, kv)
	if err != nil {
		closeKV()
		return nil, nil, err
	}
	resolver, err := r.resolver()
	if err != nil {
		closeKV()
		return nil, nil, err
	}

	transport := playback.NewTransport(r.playbackBackend(), playback.Options{
		Volume:      r.config.Playback.Volume,
		AutoAdvance: r.config.Playback.AutoAdvance,
		LoadTimeout: r.config.Playback.FetchTimeout(),
		Logger:      r.logger,
	})

	a := app.New(app.Options{
		Catalog:       r.catalog,
		Library:       lib,
		Cache:         library.NewCatalogCache(kv),
		Transport:     transport,
		Resolver:      resolver,
		Meter:         r.meter,
		PruneOnDelete: r.config.Library.PruneOnDelete,
		Logger:        r.logger,
	})
	return a, func() {
		a.Close()
		closeKV()
	}, nil
}

// startApp is newApp followed by Start. An unreachable catalog is logged
// and tolerated; the cached catalog is used instead.
func (r *Runner) startApp(ctx context.Context) (*app.App, func(), error) {
	a, release, err := r.newApp(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := a.Start(ctx); err != nil {
		if !errors.Is(err, shared.ErrSyncFailed) {
			release()
			return nil, nil, err
		}
		r.logger.Warn("catalog unreachable, using cached copy", "error", err)
	}
	return a, release, nil
}

// meter draws a byte progress bar while a local media file is read.
func (r *Runner) meter(field string, ref models.MediaRef) io.Writer {
	if r.quiet {
		return nil
	}
	size := int64(-1)
	switch ref.Kind {
	case models.MediaFile:
		if fi, err := os.Stat(ref.Value); err == nil {
			size = fi.Size()
		}
	case models.MediaBinary:
		size = int64(len(ref.Data))
	}
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(fmt.Sprintf("%-5s %s", field, ref.Name())),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
