package analytics

import (
	"errors"
	"fmt"
)

// RequestError is returned when the backend answers with a non-2xx status.
type RequestError struct {
	Status     int
	StatusText string
	URL        string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: %d %s (%s)", e.Status, e.StatusText, e.URL)
}

// ShapeError is returned when a response decodes but lacks a required field.
type ShapeError struct {
	Path  string
	Field string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected response from %s: missing %q", e.Path, e.Field)
}

// StatusCode extracts the HTTP status of a RequestError anywhere in err's
// chain. It returns 0 when err is not a RequestError.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	return 0
}
