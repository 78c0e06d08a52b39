package contract

import "errors"

var (
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("identifier already in use")
	ErrNotFound    = errors.New("not found")
	ErrCapability  = errors.New("capability call failed")
	ErrPersistence = errors.New("persistence failed")
)
