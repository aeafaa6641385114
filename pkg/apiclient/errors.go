package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTimedOut marks requests that did not settle within the client timeout.
var ErrTimedOut = errors.New("apiclient: request timed out")

// HTTPError is implemented by errors that carry an HTTP status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError reports a non-success response from the API.
type StatusError struct {
	Method string
	URL    string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("apiclient: %s %s: unexpected status %d %s", e.Method, e.URL, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var httpErr HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode() == http.StatusNotFound
}
