package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	messagingerrors "stayops/internal/messaging/errors"
	"stayops/pkg/config"
	"stayops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	TemplateCollectionName = "Message_templates"
)

// TemplateRepository reads message templates. Templates are authored by the
// booking platform; this service never writes them.
type TemplateRepository interface {
	FindByID(ctx context.Context, id string) (*model.MessageTemplate, error)
	FindActiveByTrigger(ctx context.Context, trigger model.TriggerEvent) ([]*model.MessageTemplate, error)
}

type mongoTemplateRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTemplateRepository(cfg *config.Config) TemplateRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTemplateRepository{
		cfg:        cfg,
		collection: db.Collection(TemplateCollectionName),
	}
}

func (r *mongoTemplateRepository) FindByID(ctx context.Context, id string) (*model.MessageTemplate, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", messagingerrors.ErrInvalidID, id)
	}

	var template model.MessageTemplate
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, messagingerrors.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to find message template: %w", err)
	}

	return &template, nil
}

func (r *mongoTemplateRepository) FindActiveByTrigger(ctx context.Context, trigger model.TriggerEvent) ([]*model.MessageTemplate, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"active":        true,
		"trigger_event": trigger,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query message templates: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var templates []*model.MessageTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("failed to decode message templates: %w", err)
	}

	return templates, nil
}

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
