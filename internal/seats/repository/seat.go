package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	seatserrors "seatlease/internal/seats/errors"
	"seatlease/pkg/config"
	"seatlease/pkg/model"
)

const SeatCollectionName = "Seats"

// SeatRepository is a read-only view of the catalog service's seats. The
// is_taken flag is written by the external sale finalization flow only.
type SeatRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Seat, error)
	FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*model.Seat, error)
}

type mongoSeatRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSeatRepository(cfg *config.Config) SeatRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSeatRepository{
		cfg:        cfg,
		collection: db.Collection(SeatCollectionName),
	}
}

func (r *mongoSeatRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Seat, error) {
	var seat model.Seat
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&seat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, seatserrors.ErrSeatNotFound
		}
		return nil, fmt.Errorf("failed to find seat: %w", err)
	}
	return &seat, nil
}

func (r *mongoSeatRepository) FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*model.Seat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find seats: %w", err)
	}
	defer cursor.Close(ctx)

	var seats []*model.Seat
	if err = cursor.All(ctx, &seats); err != nil {
		return nil, fmt.Errorf("failed to decode seats: %w", err)
	}
	return seats, nil
}
