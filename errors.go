package bayesx

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a request for the next experiment is already
	// in flight.
	ErrBusy = errors.New("request already in flight")

	// ErrNoEndpoint is returned by a client without a service address.
	ErrNoEndpoint = errors.New("optimization service address not configured")

	// ErrMalformedResponse wraps any response body that cannot be parsed.
	ErrMalformedResponse = errors.New("malformed optimization response")
)

// ServiceError reports a reply the service sent but that carries no usable
// result: a non-success status, or a success status with an error field.
type ServiceError struct {
	StatusCode int
	Message    string
	Detail     string
}

// Error implements error.
func (e *ServiceError) Error() string {
	switch {
	case e.Detail != "" && e.Message != "":
		return fmt.Sprintf("optimization service (status %d): %s: %s", e.StatusCode, e.Message, e.Detail)
	case e.Detail != "":
		return fmt.Sprintf("optimization service (status %d): %s", e.StatusCode, e.Detail)
	case e.Message != "":
		return fmt.Sprintf("optimization service (status %d): %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("optimization service (status %d)", e.StatusCode)
	}
}
