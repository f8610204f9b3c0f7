package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer is owned by the external identity service. Only existence is
// consulted here, when a lease names its owner.
type Customer struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email,omitempty" bson:"email,omitempty"`
	CreatedAt time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}
