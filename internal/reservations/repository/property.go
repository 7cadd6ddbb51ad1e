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
	PropertyCollection = "Properties"
)

// PropertyRepository is a read-only view of the listings platform's data.
type PropertyRepository interface {
	FindByID(ctx context.Context, id string) (*model.Property, error)
}

type mongoPropertyRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPropertyRepository(cfg *config.Config) PropertyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPropertyRepository{
		cfg:        cfg,
		collection: db.Collection(PropertyCollection),
	}
}

func (r *mongoPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	var property model.Property
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}

	return &property, nil
}
