// Package models defines the catalog data model shared by the sonic57 server and client.
//
// The package contains three groups of types:
//
// 1. Catalog records
//   - [Track] : client-facing record (audioUrl), also the library snapshot format
//   - [TrackRow] : REST/table shape (audio_src, integer id)
//   - [CreateTrackRequest] : POST /api/tracks body
//
// 2. Ingestion input
//   - [TrackDraft] : a new track with cover and audio given as [MediaRef]s
//   - [MediaRef] : a URL, data URI, local file, or in-memory binary
//
// 3. Validation
//   - [FieldError] : a field-level failure that unwraps to a shared sentinel error
package models
