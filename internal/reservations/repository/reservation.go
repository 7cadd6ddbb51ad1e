package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationserrors "stayops/internal/reservations/errors"
	"stayops/pkg/config"
	"stayops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ReservationCollection = "Reservations"
)

// ReservationRepository is a read-only view of the booking platform's data.
type ReservationRepository interface {
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindUpcomingCheckIns(ctx context.Context, from, to time.Time) ([]*model.Reservation, error)
}

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(ReservationCollection),
	}
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	var reservation model.Reservation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

// FindUpcomingCheckIns returns generation-eligible reservations whose
// check-in falls inside (from, to]. This is the sweep's candidate query.
func (r *mongoReservationRepository) FindUpcomingCheckIns(ctx context.Context, from, to time.Time) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":   bson.M{"$in": []model.ReservationStatus{model.ReservationConfirmed, model.ReservationCheckedIn}},
		"check_in": bson.M{"$gt": from, "$lte": to},
	}

	opts := options.Find().SetSort(bson.D{{Key: "check_in", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find upcoming reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction; SessionContext cannot be wrapped without breaking
// transaction semantics.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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
