package repository

import (
	"context"
	"fmt"
	"time"

	messagingerrors "stayops/internal/messaging/errors"
	"stayops/pkg/config"
	"stayops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ScheduledMessageCollectionName = "Scheduled_messages"
)

// ScheduledMessageRepository persists materialized message rows. Create
// leans on the partial unique index over (template_id, guest_id) so the
// same hook delivered twice cannot double-schedule a guest.
type ScheduledMessageRepository interface {
	Create(ctx context.Context, entry *model.ScheduledMessageEntry) error
	ExistsForTemplateAndGuest(ctx context.Context, templateID, guestID string) (bool, error)
	FindByReservation(ctx context.Context, reservationID string) ([]*model.ScheduledMessageEntry, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.ScheduledMessageEntry, error)
	Count(ctx context.Context) (int64, error)
	CancelForReservation(ctx context.Context, reservationID string) (int64, error)
}

type mongoScheduledMessageRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoScheduledMessageRepository(cfg *config.Config) ScheduledMessageRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduledMessageRepository{
		cfg:        cfg,
		collection: db.Collection(ScheduledMessageCollectionName),
	}
}

func (r *mongoScheduledMessageRepository) Create(ctx context.Context, entry *model.ScheduledMessageEntry) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	entry.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return messagingerrors.ErrDuplicateSchedule
		}
		return fmt.Errorf("failed to create scheduled message: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

func (r *mongoScheduledMessageRepository) ExistsForTemplateAndGuest(ctx context.Context, templateID, guestID string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"template_id": templateID,
		"guest_id":    guestID,
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check scheduled message existence: %w", err)
	}

	return count > 0, nil
}

func (r *mongoScheduledMessageRepository) FindByReservation(ctx context.Context, reservationID string) ([]*model.ScheduledMessageEntry, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"reservation_id": reservationID},
		options.Find().SetSort(bson.M{"scheduled_for": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled messages: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var entries []*model.ScheduledMessageEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode scheduled messages: %w", err)
	}

	return entries, nil
}

func (r *mongoScheduledMessageRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.ScheduledMessageEntry, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.M{"scheduled_for": 1}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled messages: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var entries []*model.ScheduledMessageEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode scheduled messages: %w", err)
	}

	return entries, nil
}

func (r *mongoScheduledMessageRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count scheduled messages: %w", err)
	}

	return count, nil
}

// CancelForReservation flips every still-scheduled row for the reservation
// to cancelled. Sent/failed rows keep their history.
func (r *mongoScheduledMessageRepository) CancelForReservation(ctx context.Context, reservationID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"reservation_id": reservationID,
		"status":         model.MessageScheduled,
	}
	update := bson.M{
		"$set": bson.M{
			"status": model.MessageCancelled,
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel scheduled messages: %w", err)
	}

	return result.ModifiedCount, nil
}
