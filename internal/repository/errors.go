package repository

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	// ErrNotOwned means the row exists for someone else or is not in a state
	// the caller may act on.
	ErrNotOwned       = errors.New("record not owned by caller")
	ErrSlotTaken      = errors.New("doctor already has a pending appointment at that time")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateDNI   = errors.New("dni already registered")
	// ErrDuplicate is a unique violation whose column could not be identified.
	ErrDuplicate = errors.New("duplicate record")
	// ErrMissingReference is a foreign key violation, e.g. an unknown doctor id.
	ErrMissingReference = errors.New("referenced record does not exist")
)
