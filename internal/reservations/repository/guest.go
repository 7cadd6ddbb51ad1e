package repository

import (
	"context"
	"errors"
	"fmt"

	reservationserrors "stayops/internal/reservations/errors"
	"stayops/pkg/config"
	"stayops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	GuestCollection = "Guests"
)

// GuestRepository is a read-only view of verified guest records.
type GuestRepository interface {
	FindByID(ctx context.Context, id string) (*model.Guest, error)
}

type mongoGuestRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoGuestRepository(cfg *config.Config) GuestRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoGuestRepository{
		cfg:        cfg,
		collection: db.Collection(GuestCollection),
	}
}

func (r *mongoGuestRepository) FindByID(ctx context.Context, id string) (*model.Guest, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	var guest model.Guest
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&guest)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrGuestNotFound
		}
		return nil, fmt.Errorf("failed to find guest: %w", err)
	}

	return &guest, nil
}
