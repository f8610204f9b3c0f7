package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Seat belongs to exactly one event. IsTaken is flipped by the external sale
// finalization flow once a lease is converted; nothing in this service
// writes it.
type Seat struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SeatID    string             `json:"seat_id" bson:"seat_id"` // external code, unique
	EventID   primitive.ObjectID `json:"event_id" bson:"event_id"`
	Name      string             `json:"name" bson:"name"`
	IsTaken   bool               `json:"is_taken" bson:"is_taken"`
	CreatedAt time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatLocked    SeatStatus = "locked"
	SeatTaken     SeatStatus = "taken"
)

// SeatView is the per-seat element of a seat status response.
type SeatView struct {
	SeatID string     `json:"seat_id"`
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Status SeatStatus `json:"status"`
}
