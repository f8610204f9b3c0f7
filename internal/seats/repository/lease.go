package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	seatserrors "seatlease/internal/seats/errors"
	"seatlease/pkg/config"
	mongotx "seatlease/pkg/db/mongo"
	"seatlease/pkg/model"
)

const LeaseCollectionName = "Leases"

// LeaseRepository persists active leases. Every "active" query filters on
// expires_at > now, so a lease the reaper has not deleted yet still behaves
// as if it were gone. Writes that read-then-write must run inside
// ExecuteTransaction.
type LeaseRepository interface {
	// Create inserts the lease. The unique index on seat_ids makes the
	// second of two overlapping concurrent inserts fail; that failure is
	// returned as ErrSeatAlreadyLeased.
	Create(ctx context.Context, lease *model.Lease) error
	FindActiveBySeat(ctx context.Context, seatID primitive.ObjectID, now time.Time) (*model.Lease, error)
	FindActiveByEvent(ctx context.Context, eventID primitive.ObjectID, now time.Time) ([]*model.Lease, error)
	FindActiveByOwner(ctx context.Context, customerID, eventID primitive.ObjectID, now time.Time) (*model.Lease, error)
	UpdateSeatIDs(ctx context.Context, id primitive.ObjectID, seatIDs []primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteExpiredBySeats(ctx context.Context, seatIDs []primitive.ObjectID, now time.Time) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoLeaseRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoLeaseRepository(cfg *config.Config) LeaseRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLeaseRepository{
		cfg:        cfg,
		collection: db.Collection(LeaseCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout bounds a single operation unless it is already running inside
// a transaction; a SessionContext cannot be wrapped without breaking
// transaction semantics.
func (r *mongoLeaseRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoLeaseRepository) Create(ctx context.Context, lease *model.Lease) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, lease)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", seatserrors.ErrSeatAlreadyLeased, err)
		}
		return fmt.Errorf("failed to create lease: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		lease.ID = oid
	}
	return nil
}

func (r *mongoLeaseRepository) FindActiveBySeat(ctx context.Context, seatID primitive.ObjectID, now time.Time) (*model.Lease, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"seat_ids":   seatID,
		"expires_at": bson.M{"$gt": now},
	}

	var lease model.Lease
	err := r.collection.FindOne(ctx, filter).Decode(&lease)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find lease by seat: %w", err)
	}
	return &lease, nil
}

func (r *mongoLeaseRepository) FindActiveByEvent(ctx context.Context, eventID primitive.ObjectID, now time.Time) ([]*model.Lease, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"event_id":   eventID,
		"expires_at": bson.M{"$gt": now},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find leases by event: %w", err)
	}
	defer cursor.Close(ctx)

	var leases []*model.Lease
	if err = cursor.All(ctx, &leases); err != nil {
		return nil, fmt.Errorf("failed to decode leases: %w", err)
	}
	return leases, nil
}

func (r *mongoLeaseRepository) FindActiveByOwner(ctx context.Context, customerID, eventID primitive.ObjectID, now time.Time) (*model.Lease, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"customer_id": customerID,
		"event_id":    eventID,
		"expires_at":  bson.M{"$gt": now},
	}

	var lease model.Lease
	err := r.collection.FindOne(ctx, filter).Decode(&lease)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, seatserrors.ErrLeaseNotFound
		}
		return nil, fmt.Errorf("failed to find lease by owner: %w", err)
	}
	return &lease, nil
}

func (r *mongoLeaseRepository) UpdateSeatIDs(ctx context.Context, id primitive.ObjectID, seatIDs []primitive.ObjectID) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"seat_ids": seatIDs}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update lease seats: %w", err)
	}
	if result.MatchedCount == 0 {
		return seatserrors.ErrLeaseNotFound
	}
	return nil
}

func (r *mongoLeaseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete lease: %w", err)
	}
	if result.DeletedCount == 0 {
		return seatserrors.ErrLeaseNotFound
	}
	return nil
}

// DeleteExpiredBySeats removes lapsed leases that still mention any of the
// given seats. Run before inserting a new lease so a dead document does not
// trip the unique seat index.
func (r *mongoLeaseRepository) DeleteExpiredBySeats(ctx context.Context, seatIDs []primitive.ObjectID, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"seat_ids":   bson.M{"$in": seatIDs},
		"expires_at": bson.M{"$lte": now},
	}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired leases for seats: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoLeaseRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"expires_at": bson.M{"$lte": now}}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired leases: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoLeaseRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
