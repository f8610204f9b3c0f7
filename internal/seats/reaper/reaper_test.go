package reaper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	mongotx "seatlease/pkg/db/mongo"
	"seatlease/pkg/logger"
	"seatlease/pkg/model"
)

type sweepOnlyLeaseRepo struct {
	sweeps      atomic.Int64
	deleteErr   error
	lastSweepAt atomic.Value
}

func (m *sweepOnlyLeaseRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.sweeps.Add(1)
	m.lastSweepAt.Store(now)
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	return 2, nil
}

func (m *sweepOnlyLeaseRepo) Create(ctx context.Context, lease *model.Lease) error { return nil }

func (m *sweepOnlyLeaseRepo) FindActiveBySeat(ctx context.Context, seatID primitive.ObjectID, now time.Time) (*model.Lease, error) {
	return nil, nil
}

func (m *sweepOnlyLeaseRepo) FindActiveByEvent(ctx context.Context, eventID primitive.ObjectID, now time.Time) ([]*model.Lease, error) {
	return nil, nil
}

func (m *sweepOnlyLeaseRepo) FindActiveByOwner(ctx context.Context, customerID, eventID primitive.ObjectID, now time.Time) (*model.Lease, error) {
	return nil, nil
}

func (m *sweepOnlyLeaseRepo) UpdateSeatIDs(ctx context.Context, id primitive.ObjectID, seatIDs []primitive.ObjectID) error {
	return nil
}

func (m *sweepOnlyLeaseRepo) Delete(ctx context.Context, id primitive.ObjectID) error { return nil }

func (m *sweepOnlyLeaseRepo) DeleteExpiredBySeats(ctx context.Context, seatIDs []primitive.ObjectID, now time.Time) (int64, error) {
	return 0, nil
}

func (m *sweepOnlyLeaseRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func TestReaper_SweepsOnInterval(t *testing.T) {
	repo := &sweepOnlyLeaseRepo{}
	r := New(repo, 5*time.Millisecond, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	<-done
	assert.GreaterOrEqual(t, repo.sweeps.Load(), int64(1), "expected at least one sweep before shutdown")
}

func TestReaper_StopsOnCancel(t *testing.T) {
	repo := &sweepOnlyLeaseRepo{}
	r := New(repo, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after context cancellation")
	}
	assert.Zero(t, repo.sweeps.Load(), "no tick should have fired with an hour interval")
}

func TestReaper_KeepsRunningAfterSweepError(t *testing.T) {
	repo := &sweepOnlyLeaseRepo{deleteErr: errors.New("mongo: connection reset")}
	r := New(repo, 5*time.Millisecond, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	<-done
	assert.GreaterOrEqual(t, repo.sweeps.Load(), int64(2), "sweeps must continue after a failure")
}

func TestReaper_SweepUsesCurrentTime(t *testing.T) {
	repo := &sweepOnlyLeaseRepo{}
	r := New(repo, time.Minute, testLogger())

	before := time.Now().UTC()
	r.sweep(context.Background())
	after := time.Now().UTC()

	got, ok := repo.lastSweepAt.Load().(time.Time)
	if assert.True(t, ok, "sweep should pass a cutoff time") {
		assert.False(t, got.Before(before))
		assert.False(t, got.After(after))
	}
}
