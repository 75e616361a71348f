// Package server serves the catalog REST API over gin.
//
// # Routes
//
//	GET    /                 banner
//	GET    /api/tracks       every track, newest first
//	POST   /api/tracks       create a track (201)
//	DELETE /api/tracks/:id   delete a track, idempotent
//	POST   /api/seed         load the starter catalog into an empty table
//	GET    /api/health       database round trip
//
// # Middleware
//
// Every request passes CORS (all origins), request id tagging, logging, and
// a body size cap. Mutating routes also pass [RequireToken] when an admin
// token is configured and [RateLimit] when a write rate is set.
//
// # Handler Interface
//
// A [Handler] registers its own routes on the /api group, so route
// definitions stay with their implementation. [TrackHandler] is the catalog
// handler; [NewRouter] accepts extra handlers.
package server
