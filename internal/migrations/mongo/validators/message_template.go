package validators

import "go.mongodb.org/mongo-driver/bson"

var MessageTemplateValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"content",
			"channels",
			"trigger_event",
			"active",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"content": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 5000,
			},

			"channels": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"enum": []string{"sms", "email"},
				},
			},

			"trigger_event": bson.M{
				"enum": []string{"verification", "check_in", "check_out", "none"},
			},

			"offset": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"value": bson.M{
						"bsonType": "int",
						"minimum":  0,
					},
					"unit": bson.M{
						"enum": []string{"hours", "days"},
					},
					"direction": bson.M{
						"enum": []string{"before", "after"},
					},
				},
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
