package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/sonic57/internal/shared"
)

// Blob is fetched media held in memory.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}

// FetcherOptions configures a [Fetcher].
type FetcherOptions struct {
	HTTPClient *http.Client
	MaxBytes   int64
	UserAgent  string
}

// Fetcher loads media from http(s) URLs, data URIs, or local files.
type Fetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
}

// NewHTTPClient builds a client with connect and header timeouts but no
// overall deadline, so long downloads are bounded by the caller's context.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
		},
	}
}

func NewFetcher(opts FetcherOptions) *Fetcher {
	client := opts.HTTPClient
	if client == nil {
		client = NewHTTPClient(30 * time.Second)
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 50 << 20
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = shared.AppName + "/1.0"
	}
	return &Fetcher{client: client, maxBytes: maxBytes, userAgent: ua}
}

// Fetch reads src fully. Bytes read are mirrored to progress when it is non-nil.
func (f *Fetcher) Fetch(ctx context.Context, src string, progress io.Writer) (*Blob, error) {
	src = strings.TrimSpace(src)
	lower := strings.ToLower(src)

	switch {
	case src == "":
		return nil, fmt.Errorf("%w: empty source", shared.ErrMissingMedia)
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return f.fetchHTTP(ctx, src, progress)
	case strings.HasPrefix(lower, "data:"):
		ct, data, err := DecodeDataURI(src)
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > f.maxBytes {
			return nil, fmt.Errorf("%w: %d bytes", shared.ErrMediaTooLarge, len(data))
		}
		if progress != nil {
			progress.Write(data)
		}
		return &Blob{Name: "embedded" + ExtensionFor(ct), ContentType: ct, Data: data}, nil
	default:
		return f.fetchFile(ctx, strings.TrimPrefix(src, "file://"), progress)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, src string, progress io.Writer) (*Blob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", shared.ErrServiceUnavailable, src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: %s", shared.ErrServiceUnavailable, src, resp.Status)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", shared.ErrMediaTooLarge, resp.ContentLength)
	}

	data, err := f.readAll(resp.Body, progress)
	if err != nil {
		return nil, err
	}

	name := path.Base(req.URL.Path)
	ct := resp.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = SniffContentType(name, data)
	}
	return &Blob{Name: name, ContentType: ct, Data: data}, nil
}

func (f *Fetcher) fetchFile(ctx context.Context, p string, progress io.Writer) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", shared.ErrInvalidInput, p)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil && info.Size() > f.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", shared.ErrMediaTooLarge, p, info.Size())
	}

	data, err := f.readAll(file, progress)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(p)
	return &Blob{Name: name, ContentType: SniffContentType(name, data), Data: data}, nil
}

func (f *Fetcher) readAll(r io.Reader, progress io.Writer) ([]byte, error) {
	r = io.LimitReader(r, f.maxBytes+1)
	if progress != nil {
		r = io.TeeReader(r, progress)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", shared.ErrServiceUnavailable, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", shared.ErrMediaTooLarge, f.maxBytes)
	}
	return data, nil
}
