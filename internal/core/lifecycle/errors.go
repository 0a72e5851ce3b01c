package lifecycle

import "errors"

var (
	// ErrInvalidStatus is returned when a status, stage or outcome is outside its closed set.
	ErrInvalidStatus = errors.New("lifecycle: invalid status")
	// ErrInvalidTransition is returned when an operation is not legal from the current status.
	ErrInvalidTransition = errors.New("lifecycle: invalid transition")
	// ErrDuplicateActiveRequest is returned when an open request already exists for a document name.
	ErrDuplicateActiveRequest = errors.New("lifecycle: duplicate active request")
	// ErrNotInProgress is returned when a stage operation targets a case that is not in progress.
	ErrNotInProgress = errors.New("lifecycle: case not in progress")
	// ErrNotFound is returned for unknown record, case or client ids.
	ErrNotFound = errors.New("lifecycle: not found")
	// ErrInvalidInput is returned for malformed arguments such as an empty name.
	ErrInvalidInput = errors.New("lifecycle: invalid input")
	// ErrInvalidRecord is returned when a loaded record breaks a lifecycle invariant.
	ErrInvalidRecord = errors.New("lifecycle: invalid record")
)
