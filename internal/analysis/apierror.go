package analysis

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned when the analysis service responds with a non-2xx
// HTTP status. Using a typed error allows callers to distinguish "no such
// job" (404) from throttling or transient failures without string matching.
type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("analysis service status %d", e.StatusCode)
}

// IsNotFound reports whether err is an APIError with HTTP 404.
func IsNotFound(err error) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
}

// IsThrottled reports whether err is an APIError with HTTP 429.
func IsThrottled(err error) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == http.StatusTooManyRequests
}
