package registrar

import "errors"

var (
	// ErrAllAttemptsFailed is returned when every auto-register retry has
	// been exhausted without a confirmed registration.
	ErrAllAttemptsFailed = errors.New("registrar: all registration attempts failed")

	ErrUnknownOperation = errors.New("registrar: unknown batch operation")
)
