package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrTimeout      = fmt.Errorf("operation timed out")

	// Catalog and service errors
	ErrSyncFailed         = fmt.Errorf("sync failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRateLimited        = fmt.Errorf("rate limited")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Persistence errors
	ErrStorage     = fmt.Errorf("storage failure")
	ErrKeyNotFound = fmt.Errorf("key not found")

	// Media and playback errors
	ErrMissingMedia      = fmt.Errorf("visual and auditory files are required")
	ErrUnsupportedMedia  = fmt.Errorf("unsupported media")
	ErrMediaTooLarge     = fmt.Errorf("media exceeds size limit")
	ErrTransportClosed   = fmt.Errorf("transport closed")
	ErrSuperseded        = fmt.Errorf("load superseded by newer selection")
	ErrObjectStoreConfig = fmt.Errorf("object storage not configured")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
