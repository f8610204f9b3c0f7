package validators

import "go.mongodb.org/mongo-driver/bson"

var LeaseValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"lock_id",
			"customer_id",
			"event_id",
			"seat_ids",
			"locked_at",
			"expires_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"lock_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},
			"customer_id": bson.M{
				"bsonType": "objectId",
			},
			"event_id": bson.M{
				"bsonType": "objectId",
			},
			"seat_ids": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "objectId",
				},
			},
			"locked_at": bson.M{
				"bsonType": "date",
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
