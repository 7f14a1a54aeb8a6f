package service

import "errors"

// Service layer errors for better error handling
var (
	ErrCapsuleNotFound = errors.New("capsule not found")
	ErrMemoryNotFound  = errors.New("memory not found")
	ErrProfileNotFound = errors.New("profile not found")

	// ErrLinkQueryFailed means the current link set could not be read, so
	// no diff can be computed. Reconcile aborts on it.
	ErrLinkQueryFailed = errors.New("failed to query existing media links")

	// ErrNoMediaUploaded means every file in a create request failed to
	// upload, leaving the entity with nothing to link.
	ErrNoMediaUploaded = errors.New("no media could be uploaded")

	// ErrValidation carries accumulated missing-field names.
	ErrValidation = errors.New("validation error")
)

// ValidationError lists every missing required field at once rather
// than failing on the first.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	msg := "missing required fields: "
	for i, f := range e.Missing {
		if i > 0 {
			msg += ", "
		}
		msg += f
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
