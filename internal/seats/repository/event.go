package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	seatserrors "seatlease/internal/seats/errors"
	"seatlease/pkg/config"
	"seatlease/pkg/model"
)

const EventCollectionName = "Events"

// EventRepository is a read-only view of the catalog service's events.
type EventRepository interface {
	FindByCode(ctx context.Context, code string) (*model.Event, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Event, error)
}

type mongoEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEventRepository(cfg *config.Config) EventRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEventRepository{
		cfg:        cfg,
		collection: db.Collection(EventCollectionName),
	}
}

func (r *mongoEventRepository) FindByCode(ctx context.Context, code string) (*model.Event, error) {
	var event model.Event
	err := r.collection.FindOne(ctx, bson.M{"event_id": code}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, seatserrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to find event by code: %w", err)
	}
	return &event, nil
}

func (r *mongoEventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Event, error) {
	var event model.Event
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, seatserrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return &event, nil
}
