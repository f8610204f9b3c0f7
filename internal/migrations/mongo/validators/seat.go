package validators

import "go.mongodb.org/mongo-driver/bson"

var SeatValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"seat_id", "event_id", "name", "is_taken"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"seat_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"event_id": bson.M{
				"bsonType": "objectId",
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"is_taken": bson.M{
				"bsonType": "bool",
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
