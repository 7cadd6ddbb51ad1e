package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	passcodeserrors "stayops/internal/passcodes/errors"
	"stayops/pkg/config"
	"stayops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Passcode_entries"
)

// PasscodeRepository persists passcode entries. Create relies on the
// partial unique index over non-revoked reservation_ids: the duplicate-key
// rejection is the system's only concurrency guard for generation races.
type PasscodeRepository interface {
	Create(ctx context.Context, entry *model.PasscodeEntry) error
	FindByID(ctx context.Context, id string) (*model.PasscodeEntry, error)
	FindCurrentByReservation(ctx context.Context, reservationID string) (*model.PasscodeEntry, error)
	SetCode(ctx context.Context, id string, code string) (*model.PasscodeEntry, error)
	SetStatus(ctx context.Context, id string, status model.PasscodeStatus) error
	SetHostNotified(ctx context.Context, id string, at time.Time) error
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type mongoPasscodeRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPasscodeRepository(cfg *config.Config) PasscodeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPasscodeRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPasscodeRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoPasscodeRepository) Create(ctx context.Context, entry *model.PasscodeEntry) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	entry.CreatedAt = now
	entry.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return passcodeserrors.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create passcode entry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPasscodeRepository) FindByID(ctx context.Context, id string) (*model.PasscodeEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", passcodeserrors.ErrInvalidID, id)
	}

	var entry model.PasscodeEntry
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, passcodeserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find passcode entry: %w", err)
	}

	return &entry, nil
}

// FindCurrentByReservation returns the reservation's non-revoked entry.
// At most one exists per the unique index.
func (r *mongoPasscodeRepository) FindCurrentByReservation(ctx context.Context, reservationID string) (*model.PasscodeEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"reservation_id": reservationID,
		"status":         bson.M{"$ne": model.PasscodeRevoked},
	}

	var entry model.PasscodeEntry
	err := r.collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, passcodeserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find passcode entry: %w", err)
	}

	return &entry, nil
}

func (r *mongoPasscodeRepository) SetCode(ctx context.Context, id string, code string) (*model.PasscodeEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", passcodeserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"code":       code,
			"status":     model.PasscodeActive,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	// Pending is the only state a code may land in. Filtering here keeps a
	// concurrent revoke from being overwritten between read and write.
	filter := bson.M{"_id": objectID, "status": model.PasscodePending}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to set passcode: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, findErr := r.FindByID(ctx, id); findErr == nil {
			return nil, passcodeserrors.ErrNotPending
		}
		return nil, passcodeserrors.ErrNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *mongoPasscodeRepository) SetStatus(ctx context.Context, id string, status model.PasscodeStatus) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", passcodeserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update passcode status: %w", err)
	}
	if result.MatchedCount == 0 {
		return passcodeserrors.ErrNotFound
	}

	return nil
}

func (r *mongoPasscodeRepository) SetHostNotified(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", passcodeserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"host_notified_at": at.UTC().Truncate(time.Millisecond),
			"updated_at":       time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to record host notification: %w", err)
	}
	if result.MatchedCount == 0 {
		return passcodeserrors.ErrNotFound
	}

	return nil
}

// ExpireDue bulk-transitions active entries whose window has closed. The
// filter is row-scoped on status, so it is safe to run while generation
// inserts new entries.
func (r *mongoPasscodeRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"status":      model.PasscodeActive,
		"valid_until": bson.M{"$lt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     model.PasscodeExpired,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire passcodes: %w", err)
	}

	return result.ModifiedCount, nil
}
