package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
)

// APIError is a non-success reply from the catalog service. It unwraps to
// the sentinel matching its status class.
type APIError struct {
	StatusCode int
	Message    string
	Received   map[string]bool
	Body       []byte
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: %d %s", e.Err, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v: %d %s", e.Err, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *APIError) Unwrap() error { return e.Err }

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: body, Err: classify(status)}

	var er models.ErrorResponse
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		e.Message = er.Error
		if er.Details != "" {
			e.Message += " (" + er.Details + ")"
		}
		e.Received = er.Received
	}
	return e
}

// classify maps an HTTP status to a sentinel error.
func classify(status int) error {
	switch {
	case status == http.StatusBadRequest:
		return shared.ErrInvalidInput
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return shared.ErrUnauthorized
	case status == http.StatusNotFound:
		return shared.ErrTrackNotFound
	case status == http.StatusRequestEntityTooLarge:
		return shared.ErrMediaTooLarge
	case status == http.StatusTooManyRequests:
		return shared.ErrRateLimited
	case status == http.StatusServiceUnavailable:
		return shared.ErrServiceUnavailable
	default:
		return shared.ErrSyncFailed
	}
}
