package errors

import "errors"

var (
	ErrEventNotFound = errors.New("event not found")

	ErrSeatNotFound = errors.New("seat not found")

	ErrCustomerNotFound = errors.New("customer not found")

	ErrLeaseNotFound = errors.New("no active lease found")

	ErrInvalidID = errors.New("invalid ID format")

	// ErrSeatAlreadyLeased is surfaced when the unique seat index rejects a
	// lease insert because a concurrent transaction committed an overlapping
	// lease first.
	ErrSeatAlreadyLeased = errors.New("seat already held by another lease")
)
