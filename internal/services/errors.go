package services

import "errors"

var (
	// ErrValidation marks input the user can fix; its message is safe to
	// show in a reply.
	ErrValidation = errors.New("validation failed")
	// ErrStore marks a failure of the ledger store.
	ErrStore = errors.New("ledger store failure")
)
