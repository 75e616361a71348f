// Package tasks ingests tracks into the catalog with real-time progress reporting.
//
// # Ingestion
//
// [Ingestor.Ingest] runs one [models.TrackDraft] through four phases:
//
//  1. [Validate]: title, artist, cover and audio must all be present
//  2. [ResolveMedia]: links pass through, binaries are uploaded or embedded
//  3. [ExtractMetadata]: empty album, genre and duration are read from the audio
//  4. [Commit]: the create request is sent through a [Creator]
//
// A failure in any phase returns before anything is written.
//
// # Bulk Import
//
// [Ingestor.BulkImport] fans drafts out to a worker pool with a shared rate
// limiter. Failures are recorded per draft and do not stop the batch.
// [ParseManifest] reads drafts from a CSV file.
//
// # Progress Reporting
//
// All operations take an optional channel of [ProgressUpdate]. Sends use
// select with default so a slow reader never blocks ingestion.
package tasks
