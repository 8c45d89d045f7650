package providers

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned when the endpoint answers with a non-success
// status. Body is kept verbatim.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// DecodeError is returned when a success response does not carry the
// expected completion shape.
type DecodeError struct {
	Err  error
	Body string
}

func (e *DecodeError) Error() string { return e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

// MissingKeyError is returned by New when a provider needs a key and its
// environment variable is empty.
type MissingKeyError struct {
	Env string
}

func (e *MissingKeyError) Error() string {
	return e.Env + " environment variable is not set"
}

// IsAuthError checks if an error is an authentication error. A missing key
// counts as one.
func IsAuthError(err error) bool {
	var mk *MissingKeyError
	if errors.As(err, &mk) {
		return true
	}
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
}
