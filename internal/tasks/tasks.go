package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/sonic57/internal/media"
	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
)

// Creator persists a validated track and returns it with its assigned id.
// The catalog REST client satisfies it.
type Creator interface {
	Create(ctx context.Context, req models.CreateTrackRequest) (*models.Track, error)
}

// MediaResolver turns a media ref into a storable value.
type MediaResolver interface {
	Resolve(ctx context.Context, ref models.MediaRef, progress io.Writer) (*media.Resolved, error)
}

// Ingestor runs the ingestion pipeline for a single draft.
type Ingestor struct {
	creator  Creator
	resolver MediaResolver
	meter    func(field string, ref models.MediaRef) io.Writer
	logger   *log.Logger
}

// IngestorOptions configures an [Ingestor]. Meter, when set, returns a
// writer that receives bytes as binary media is read.
type IngestorOptions struct {
	Creator  Creator
	Resolver MediaResolver
	Meter    func(field string, ref models.MediaRef) io.Writer
	Logger   *log.Logger
}

func NewIngestor(opts IngestorOptions) *Ingestor {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Ingestor{
		creator:  opts.Creator,
		resolver: opts.Resolver,
		meter:    opts.Meter,
		logger:   logger.With("component", "ingest"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Ingest validates the draft, resolves both media refs, fills blank fields
// from the audio's tags, and creates the track. Nothing is written unless
// every earlier phase succeeds.
func (i *Ingestor) Ingest(ctx context.Context, draft models.TrackDraft, progress chan<- ProgressUpdate) (*models.Track, error) {
	if i.creator == nil {
		return nil, fmt.Errorf("%w: no catalog to ingest into", shared.ErrServiceUnavailable)
	}
	if i.resolver == nil {
		return nil, fmt.Errorf("%w: no media resolver", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, validateUpdate(draft.Title))
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	sendProgress(progress, resolveUpdate(1, 2, "cover", draft.Cover))
	cover, err := i.resolver.Resolve(ctx, draft.Cover, i.meterFor("cover", draft.Cover))
	if err != nil {
		return nil, fmt.Errorf("resolve cover: %w", err)
	}

	sendProgress(progress, resolveUpdate(2, 2, "audio", draft.Audio))
	audio, err := i.resolver.Resolve(ctx, draft.Audio, i.meterFor("audio", draft.Audio))
	if err != nil {
		return nil, fmt.Errorf("resolve audio: %w", err)
	}

	if len(audio.Data) > 0 {
		md := media.Extract(audio.Data)
		sendProgress(progress, extractUpdate(md.Format))
		md.Fill(&draft)
		i.logger.Debug("extracted metadata", "format", md.Format, "duration", md.Duration, "genre", md.Genre)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sendProgress(progress, commitUpdate(draft.Title))
	tr, err := i.creator.Create(ctx, draft.Request(cover.Value, audio.Value))
	if err != nil {
		return nil, err
	}

	i.logger.Info("ingested track", "id", tr.ID, "title", tr.Title, "artist", tr.Artist)
	sendProgress(progress, committedUpdate(tr))
	return tr, nil
}

func (i *Ingestor) meterFor(field string, ref models.MediaRef) io.Writer {
	if i.meter == nil || !ref.IsBinary() {
		return nil
	}
	return i.meter(field, ref)
}
