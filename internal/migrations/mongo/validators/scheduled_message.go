package validators

import "go.mongodb.org/mongo-driver/bson"

var ScheduledMessageValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"template_id",
			"reservation_id",
			"scheduled_for",
			"status",
			"channels",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"template_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"reservation_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"guest_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"scheduled_for": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"enum": []string{"scheduled", "sent", "cancelled", "failed"},
			},

			"channels": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"enum": []string{"sms", "email"},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
