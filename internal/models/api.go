package models

// API response bodies shared by the REST server and its client.

const (
	MsgMissingFields  = "Missing required fields"
	MsgTrackDeleted   = "Track deleted successfully"
	MsgSeeded         = "Database seeded successfully"
	MsgAlreadySeeded  = "Database already seeded"
	MsgHealthy        = "Database connection successful!"
	MsgUnhealthy      = "Database connection FAILED"
	MsgServerError    = "Server error"
	MsgRootBanner     = "Sonic-57 API Core Online"
	HealthStatusOK    = "SUCCESS"
	HealthStatusError = "ERROR"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error    string          `json:"error"`
	Details  string          `json:"details,omitempty"`
	Received map[string]bool `json:"received,omitempty"`
}

// MessageResponse acknowledges a delete or seed.
type MessageResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// HealthResponse is the GET /api/health body.
type HealthResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	ServerTime    string `json:"server_time,omitempty"`
	SQLiteVersion string `json:"sqlite_version,omitempty"`
	ErrorDetail   string `json:"error_detail,omitempty"`
}
