package validators

import "go.mongodb.org/mongo-driver/bson"

var PropertyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"address",
			"host_name",
			"host_phone",
			"access",
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

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"time_zone": bson.M{
				"bsonType": "string",
			},

			"host_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"host_phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{1,14}$`,
			},

			"access": bson.M{
				"bsonType": "object",
				"required": []string{"mode"},
				"properties": bson.M{
					"mode": bson.M{
						"enum": []string{"vendor_lock", "manual", "traditional"},
					},
					"instructions": bson.M{
						"bsonType":  "string",
						"maxLength": 2000,
					},
					"device_ids": bson.M{
						"bsonType": "array",
						"items": bson.M{
							"bsonType": "string",
						},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
