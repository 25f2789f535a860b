package orders

import (
	"errors"
	"fmt"
)

// Engine outcomes callers must be able to tell apart. A lost claim race
// (ErrAlreadyClaimed) is an expected result under contention, not a fault,
// and must never be folded into a generic error.
var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrAlreadyClaimed    = errors.New("order already claimed")
	ErrUnauthorized      = errors.New("actor not authorized for this order")
	ErrValidation        = errors.New("validation failed")
	ErrStorage           = errors.New("storage failure")
)

// storageErr wraps a storage-layer failure with its cause attached for
// logging. The engine never retries these; retry policy belongs to the caller.
func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

func validationErr(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}
