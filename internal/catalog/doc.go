// Package catalog is the client side of the catalog REST service.
//
// [Client] lists, creates, and deletes tracks, seeds an empty catalog, and
// checks service health. Every call takes a context and is bounded by the
// client timeout. Failures unwrap to the sentinels in package shared, so
// callers branch with errors.Is rather than on status codes.
package catalog
