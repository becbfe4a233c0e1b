package api

import (
	"fmt"
	"net/http"
)

// StatusError is returned when the marketplace answers a read with a non-success status.
type StatusError struct {
	Op     string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP error! status: %d", e.Op, e.Status)
}

// RejectedError is returned when the marketplace refuses a write.
// Detail carries the server-provided reason, if any.
type RejectedError struct {
	Op     string
	Detail string
	Status int
}

func (e *RejectedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("%s: rejected with status %d (%s)", e.Op, e.Status, http.StatusText(e.Status))
}

// TransportError wraps a failure to reach the marketplace at all.
type TransportError struct {
	Err error
	Op  string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
