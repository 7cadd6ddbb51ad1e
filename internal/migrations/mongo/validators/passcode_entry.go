package validators

import "go.mongodb.org/mongo-driver/bson"

var PasscodeEntryValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"reservation_id",
			"property_id",
			"valid_from",
			"valid_until",
			"method",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"reservation_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"property_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"code": bson.M{
				"bsonType":  "string",
				"minLength": 4,
				"maxLength": 8,
			},

			"valid_from": bson.M{
				"bsonType": "date",
			},

			"valid_until": bson.M{
				"bsonType": "date",
			},

			"method": bson.M{
				"enum": []string{"auto", "manual"},
			},

			"status": bson.M{
				"enum": []string{"pending", "active", "expired", "revoked"},
			},

			"vendor": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"device_id": bson.M{
						"bsonType": "string",
					},
					"code_id": bson.M{
						"bsonType": "string",
					},
					"extra": bson.M{
						"bsonType": "object",
						"additionalProperties": bson.M{
							"bsonType": "string",
						},
					},
				},
			},

			"host_notified_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
