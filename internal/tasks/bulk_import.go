package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"github.com/desertthunder/sonic57/internal/models"
)

// BulkImportOpts contains configuration for bulk ingestion.
type BulkImportOpts struct {
	NumWorkers int     // Concurrent workers (default: 3, max: 10)
	RateLimit  float64 // Creates per second (default: 5)
}

// ImportResult is the outcome for one draft.
type ImportResult struct {
	Index int
	Title string
	Track *models.Track
	Error error
}

// BulkImportResult summarizes a bulk ingestion.
type BulkImportResult struct {
	Total      int
	Successful int
	Failed     int
	Results    []ImportResult // Ordered by input index
}

type importJob struct {
	index int
	draft models.TrackDraft
}

// BulkImport ingests drafts concurrently, pacing commits with a rate limiter.
// A failed draft is recorded and the rest continue; cancelling ctx stops
// dispatching new drafts.
func (i *Ingestor) BulkImport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	drafts []models.TrackDraft,
	opts BulkImportOpts,
) (*BulkImportResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	result := &BulkImportResult{
		Total:   len(drafts),
		Results: make([]ImportResult, 0, len(drafts)),
	}
	if len(drafts) == 0 {
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan importJob, len(drafts))
	results := make(chan ImportResult, len(drafts))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go i.importWorker(ctx, &wg, limiter, jobs, results)
	}

	go func() {
		defer close(jobs)
		for idx, d := range drafts {
			select {
			case <-ctx.Done():
				return
			case jobs <- importJob{index: idx, draft: d}:
				sendProgress(prog, importingUpdate(idx+1, len(drafts), d.Title))
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Error == nil {
			result.Successful++
			sendProgress(prog, importCompletedUpdate(completed, len(drafts), res.Track))
		} else {
			result.Failed++
			sendProgress(prog, importFailedUpdate(completed, len(drafts), res.Title, res.Error))
		}
	}

	sort.Slice(result.Results, func(a, b int) bool { return result.Results[a].Index < result.Results[b].Index })

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("import interrupted after %d of %d: %w", completed, len(drafts), err)
	}
	return result, nil
}

// importWorker ingests drafts from the jobs channel.
func (i *Ingestor) importWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan importJob,
	results chan<- ImportResult,
) {
	defer wg.Done()

	for job := range jobs {
		res := ImportResult{Index: job.index, Title: job.draft.Title}
		if err := limiter.Wait(ctx); err != nil {
			res.Error = err
			results <- res
			continue
		}

		res.Track, res.Error = i.Ingest(ctx, job.draft, nil)
		results <- res
	}
}
