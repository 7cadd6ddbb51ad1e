package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayops/internal/migrations/mongo/validators"
)

var (
	ReservationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "check_in", Value: 1},
		}},
		{Keys: bson.D{{Key: "guest_id", Value: 1}}},
	}

	PropertiesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "host_phone", Value: 1}}},
	}

	GuestsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "reservation_id", Value: 1}}},
	}

	// The partial unique index is the concurrency guard for generation:
	// at most one non-revoked entry per reservation, duplicate inserts
	// rejected by the server.
	PasscodeEntriesIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "reservation_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": []string{"pending", "active", "expired"}},
				}),
		},
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "valid_until", Value: 1},
		}},
	}

	MessageTemplatesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "active", Value: 1},
			{Key: "trigger_event", Value: 1},
		}},
	}

	// Unique (template_id, guest_id) backs the scheduler's dedup; partial
	// on guest_id so role-targeted rows without a guest are exempt.
	ScheduledMessagesIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "template_id", Value: 1},
				{Key: "guest_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"guest_id": bson.M{"$exists": true},
				}),
		},
		{Keys: bson.D{
			{Key: "reservation_id", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "scheduled_for", Value: 1},
		}},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running StayOps Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Reservations": {
			Indexes:   ReservationsIndexes,
			Validator: validators.ReservationValidator,
		},
		"Properties": {
			Indexes:   PropertiesIndexes,
			Validator: validators.PropertyValidator,
		},
		"Guests": {
			Indexes:   GuestsIndexes,
			Validator: validators.GuestValidator,
		},
		"Passcode_entries": {
			Indexes:   PasscodeEntriesIndexes,
			Validator: validators.PasscodeEntryValidator,
		},
		"Message_templates": {
			Indexes:   MessageTemplatesIndexes,
			Validator: validators.MessageTemplateValidator,
		},
		"Scheduled_messages": {
			Indexes:   ScheduledMessagesIndexes,
			Validator: validators.ScheduledMessageValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}
