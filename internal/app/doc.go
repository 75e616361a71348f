// Package app is the client-side state layer. It joins the remote catalog,
// the persistent library, the ingestion pipeline, and the playback transport
// behind one handle that the CLI and the terminal UI share.
package app
