package errs

import (
	"errors"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrUnavailable means the item cannot be reserved right now.
	ErrUnavailable       = errors.New("item is unavailable")
	ErrInvalidDateRange  = errors.New("end date must be at least one day after start date")
	ErrNotOwner          = errors.New("actor is not the item owner")
	ErrNotBorrower       = errors.New("actor is not the borrower")
	ErrNotParticipant    = errors.New("actor is not a party to the request")
	ErrDuplicatePending  = errors.New("a pending request for this item already exists")
	ErrTerminalState     = errors.New("request is already closed")
	ErrInvalidTransition = errors.New("transition is not allowed from the current state")
	ErrAlreadyCompleted  = errors.New("request is already completed")

	ErrDuplicateRecord = errors.New("history record already exists")
	ErrAlreadyRated    = errors.New("loan is already rated")
	ErrInvalidRating   = errors.New("rating must be between 0 and 5")

	ErrInvalidLocation = errors.New("either an address or both coordinates are required")

	// ErrStoreConflict is a concurrent write detected at the transaction boundary.
	ErrStoreConflict = errors.New("store conflict")
)
