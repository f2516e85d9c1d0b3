package store

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRow is wrapped by every MalformedRowError.
	ErrMalformedRow = errors.New("malformed inventory row")

	// ErrVariantMismatch is returned by Update when the stored row is a
	// different variant from the item passed in.
	ErrVariantMismatch = errors.New("item type cannot change after creation")

	// ErrIdentityCollision is wrapped by every IdentityRepairError.
	ErrIdentityCollision = errors.New("identity collision")
)

// MalformedRowError reports a stored row whose non-date fields could not be
// turned back into an item.
type MalformedRowError struct {
	ID     int64
	Column string
	Err    error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("inventory row %d: column %s: %v", e.ID, e.Column, e.Err)
}

func (e *MalformedRowError) Unwrap() []error { return []error{ErrMalformedRow, e.Err} }

// IdentityRepairError is returned by Create when an insert collided on the
// identity column and the repair or the single retry failed as well.
type IdentityRepairError struct {
	// Cause is the collision reported by the first insert.
	Cause error
	// Err is the failure of the generator reset or of the retried insert.
	Err error
}

func (e *IdentityRepairError) Error() string {
	return fmt.Sprintf("identity repair failed: %v (after: %v)", e.Err, e.Cause)
}

func (e *IdentityRepairError) Unwrap() []error {
	return []error{ErrIdentityCollision, e.Cause, e.Err}
}
