package model

import "time"

// AcquireLeaseRequest asks for one lease over every listed seat. The grant
// is all-or-nothing: a single unavailable seat fails the whole batch.
type AcquireLeaseRequest struct {
	EventID    string   `json:"event_id" validate:"required,mongodb"`
	CustomerID string   `json:"customer_id" validate:"required,mongodb"`
	SeatIDs    []string `json:"seat_ids" validate:"required,min=1,max=50,dive,required,mongodb"`
}

type LeaseGrant struct {
	LockID        string    `json:"lock_id"`
	LockedSeatIDs []string  `json:"locked_seat_ids"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// LeaseConflict enumerates every seat that blocked an acquire request, so
// the caller can adjust its selection in one round trip.
type LeaseConflict struct {
	Message         string   `json:"message"`
	FailedSeatNames []string `json:"failed_seat_names"`
	LockedSeatIDs   []string `json:"locked_seat_ids"`
}

type ReleaseSeatsRequest struct {
	EventID         string   `json:"event_id" validate:"required,mongodb"`
	CustomerID      string   `json:"customer_id" validate:"required,mongodb"`
	SeatIDsToUnlock []string `json:"seat_ids_to_unlock" validate:"required,min=1,max=50,dive,required,mongodb"`
}

type ReleaseResult struct {
	UnlockedSeatIDs        []string `json:"unlocked_seat_ids"`
	RemainingLockedSeatIDs []string `json:"remaining_locked_seat_ids"`
	LockRemoved            bool     `json:"lock_removed"`
}
