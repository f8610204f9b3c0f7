package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is owned by the external catalog service. This service only reads it
// to resolve the external event code into the internal identifier.
type Event struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	EventID   string             `json:"event_id" bson:"event_id"` // external code, unique
	Name      string             `json:"name" bson:"name"`
	CreatedAt time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}
