package media

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
)

// Resolved is a media ref turned into a value the catalog can store.
// Data is populated whenever the bytes passed through the resolver.
type Resolved struct {
	Value       string
	ContentType string
	Data        []byte
}

// Resolver turns [models.MediaRef]s into storable strings. Links pass
// through untouched. Binaries are uploaded when an [Uploader] is configured
// and embedded as data URIs otherwise.
type Resolver struct {
	fetcher  *Fetcher
	uploader Uploader
	maxBytes int64
	logger   *log.Logger
}

// ResolverOptions configures a [Resolver]. Uploader may be nil.
type ResolverOptions struct {
	Fetcher  *Fetcher
	Uploader Uploader
	MaxBytes int64
	Logger   *log.Logger
}

func NewResolver(opts ResolverOptions) *Resolver {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher(FetcherOptions{MaxBytes: opts.MaxBytes})
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{
		fetcher:  fetcher,
		uploader: opts.Uploader,
		maxBytes: fetcher.maxBytes,
		logger:   logger.With("component", "media"),
	}
}

// Resolve converts ref. Progress, when non-nil, receives bytes as local files are read.
func (r *Resolver) Resolve(ctx context.Context, ref models.MediaRef, progress io.Writer) (*Resolved, error) {
	switch ref.Kind {
	case models.MediaNone:
		return nil, shared.ErrMissingMedia
	case models.MediaURL:
		return &Resolved{Value: ref.Value}, nil
	case models.MediaDataURI, models.MediaFile:
		blob, err := r.fetcher.Fetch(ctx, ref.Value, progress)
		if err != nil {
			return nil, err
		}
		return r.store(ctx, blob, ref.Kind == models.MediaDataURI, ref.Value)
	case models.MediaBinary:
		if int64(len(ref.Data)) > r.maxBytes {
			return nil, fmt.Errorf("%w: %s is %d bytes", shared.ErrMediaTooLarge, ref.Name(), len(ref.Data))
		}
		ct := ref.ContentType
		if ct == "" {
			ct = SniffContentType(ref.Value, ref.Data)
		}
		if progress != nil {
			progress.Write(ref.Data)
		}
		return r.store(ctx, &Blob{Name: ref.Name(), ContentType: ct, Data: ref.Data}, false, "")
	default:
		return nil, fmt.Errorf("%w: media kind %v", shared.ErrUnsupportedMedia, ref.Kind)
	}
}

// store uploads blob or embeds it. An input that already was a data URI is
// kept verbatim when there is nowhere to upload it.
func (r *Resolver) store(ctx context.Context, blob *Blob, isDataURI bool, original string) (*Resolved, error) {
	if r.uploader != nil {
		u, err := r.uploader.Upload(ctx, blob.Name, blob.ContentType, bytes.NewReader(blob.Data))
		if err != nil {
			return nil, err
		}
		r.logger.Info("uploaded media", "name", blob.Name, "bytes", len(blob.Data), "url", u)
		return &Resolved{Value: u, ContentType: blob.ContentType, Data: blob.Data}, nil
	}

	value := original
	if !isDataURI {
		value = EncodeDataURI(blob.ContentType, blob.Data)
	}
	return &Resolved{Value: value, ContentType: blob.ContentType, Data: blob.Data}, nil
}
