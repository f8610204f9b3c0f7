package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"seatlease/internal/migrations/mongo/validators"
)

var (
	EventIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	SeatIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "seat_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "event_id", Value: 1}}},
	}

	// LeaseIndexes carry the correctness-bearing constraint: the unique
	// index on seat_ids spans array elements across documents, so two
	// leases can never both list the same seat. The TTL index only cleans
	// up; readers filter on expires_at themselves.
	LeaseIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "lock_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "seat_ids", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{
			{Key: "customer_id", Value: 1},
			{Key: "event_id", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "event_id", Value: 1},
			{Key: "expires_at", Value: 1},
		}},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, databaseName string) error {
	db := client.Database(databaseName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Events": {
			Indexes:   EventIndexes,
			Validator: validators.EventValidator,
		},
		"Seats": {
			Indexes:   SeatIndexes,
			Validator: validators.SeatValidator,
		},
		"Customers": {
			Validator: validators.CustomerValidator,
		},
		"Leases": {
			Indexes:   LeaseIndexes,
			Validator: validators.LeaseValidator,
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

	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	opts := options.CreateCollection()
	if validator != nil {
		opts.SetValidator(validator)
	}

	err := db.CreateCollection(ctx, name, opts)
	if err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == 48 { // NamespaceExists
			return nil
		}
		return err
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	_, err := db.Collection(name).Indexes().CreateMany(ctx, indexes)
	return err
}
