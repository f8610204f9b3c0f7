package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lease is a time-bounded claim by one customer on a set of seats for one
// event. A lease past ExpiresAt is inert: every reader must treat it as
// absent whether or not the reaper has deleted it yet. The seat set is
// non-empty for as long as the document exists; releasing the last seat
// deletes the lease.
type Lease struct {
	ID         primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	LockID     string               `json:"lock_id" bson:"lock_id"` // opaque token, unique
	CustomerID primitive.ObjectID   `json:"customer_id" bson:"customer_id"`
	EventID    primitive.ObjectID   `json:"event_id" bson:"event_id"`
	SeatIDs    []primitive.ObjectID `json:"seat_ids" bson:"seat_ids"`
	LockedAt   time.Time            `json:"locked_at" bson:"locked_at"`
	ExpiresAt  time.Time            `json:"expires_at" bson:"expires_at"`
}

// Expired reports whether the lease has lapsed as of now. ExpiresAt equal to
// now counts as expired.
func (l *Lease) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}

func (l *Lease) HoldsSeat(seatID primitive.ObjectID) bool {
	for _, id := range l.SeatIDs {
		if id == seatID {
			return true
		}
	}
	return false
}
