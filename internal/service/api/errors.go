package api

import (
	"errors"
	"fmt"
)

// ErrMissingToken is returned before any network call when no bearer token is present.
var ErrMissingToken = errors.New("No authorization token found")

// RequestError reports a non-2xx response or a transport failure.
type RequestError struct {
	Op         string
	StatusCode int
	Status     string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Status
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == 401
}
