package planservice

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity does not exist remotely.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict indicates the entity already exists remotely, e.g. a
	// monthly programming for a (task, month) pair that is already taken.
	ErrConflict = errors.New("entity already exists")

	// ErrUnavailable indicates the planning service is unreachable.
	ErrUnavailable = errors.New("planning service unavailable")

	// ErrTimeout indicates the call exceeded the configured timeout.
	ErrTimeout = errors.New("planning service request timed out")
)

// StatusError reports a non-2xx response that maps to no sentinel above.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: planning service returned status %d: %s", e.Op, e.Status, e.Body)
}
