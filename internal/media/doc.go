// Package media resolves cover and audio references for ingestion and
// playback.
//
// A reference is a link, a data URI, a local file, or bytes already in
// memory. [Fetcher] loads any of them with size limits and network
// timeouts. [Resolver] turns them into values the catalog can store, using
// an S3-compatible [ObjectStore] when one is configured. [Extract] reads tags
// and the decoded duration from audio so ingestion can fill blank fields.
package media
