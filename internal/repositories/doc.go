// Package repositories provides the SQLite persistence layer behind the catalog API.
//
// [TrackRepository] owns the tracks table: newest-first listing, inserts with
// column defaults, and idempotent deletes. [DefaultCatalog] and
// [TrackRepository.Seed] populate an empty table with the fixed starter set.
// [KVRepository] backs the client-local key/value area (library and catalog cache)
// when the sqlite library backend is selected.
//
// Driver failures are wrapped with [shared.ErrStorage] so callers can map them
// to a 500 without inspecting driver errors.
package repositories
