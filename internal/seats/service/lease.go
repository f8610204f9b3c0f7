package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	seatserrors "seatlease/internal/seats/errors"
	"seatlease/internal/seats/repository"
	"seatlease/internal/seats/validator"
	"seatlease/pkg/config"
	apperrors "seatlease/pkg/errors"
	"seatlease/pkg/events"
	"seatlease/pkg/model"
)

const conflictMessage = "Some seats could not be locked as they are already taken or reserved."

// LeaseService coordinates contested access to seats. AcquireLease and
// ReleaseSeats each run as one Mongo transaction; the unique index on
// Leases.seat_ids is what stops two concurrent transactions from both
// committing a lease on the same seat, so a lost race surfaces as a
// duplicate-key failure mapped to a conflict, never as a double booking.
type LeaseService interface {
	GetEventSeats(ctx context.Context, eventCode string) ([]model.SeatView, error)
	AcquireLease(ctx context.Context, req *model.AcquireLeaseRequest) (*model.LeaseGrant, error)
	ReleaseSeats(ctx context.Context, req *model.ReleaseSeatsRequest) (*model.ReleaseResult, error)
}

type leaseService struct {
	cfg       *config.Config
	events    repository.EventRepository
	seats     repository.SeatRepository
	customers repository.CustomerRepository
	leases    repository.LeaseRepository
	validator *validator.LeaseValidator
	publisher events.Publisher
}

func NewLeaseService(
	eventRepo repository.EventRepository,
	seatRepo repository.SeatRepository,
	customerRepo repository.CustomerRepository,
	leaseRepo repository.LeaseRepository,
	leaseValidator *validator.LeaseValidator,
	publisher events.Publisher,
	cfg *config.Config,
) LeaseService {
	return &leaseService{
		cfg:       cfg,
		events:    eventRepo,
		seats:     seatRepo,
		customers: customerRepo,
		leases:    leaseRepo,
		validator: leaseValidator,
		publisher: publisher,
	}
}

func (s *leaseService) GetEventSeats(ctx context.Context, eventCode string) ([]model.SeatView, error) {
	if eventCode == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}

	event, err := s.events.FindByCode(ctx, eventCode)
	if err != nil {
		if errors.Is(err, seatserrors.ErrEventNotFound) {
			return nil, apperrors.NotFoundWithID("Event", eventCode)
		}
		return nil, apperrors.Internal("Failed to resolve event", err)
	}

	// One timestamp for the whole response so every seat is judged against
	// the same instant.
	now := time.Now().UTC()

	var seats []*model.Seat
	var leases []*model.Lease
	var errSeats, errLeases error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		seats, errSeats = s.seats.FindByEvent(ctx, event.ID)
	}()

	go func() {
		defer wg.Done()
		leases, errLeases = s.leases.FindActiveByEvent(ctx, event.ID, now)
	}()

	wg.Wait()
	if errSeats != nil {
		s.cfg.Log.Error("Failed to list event seats", "event_id", eventCode, "error", errSeats)
		return nil, apperrors.Internal("Failed to retrieve seats", errSeats)
	}
	if errLeases != nil {
		s.cfg.Log.Error("Failed to list active leases", "event_id", eventCode, "error", errLeases)
		return nil, apperrors.Internal("Failed to retrieve seat statuses", errLeases)
	}

	return ProjectSeatStatuses(seats, leases, now), nil
}

func (s *leaseService) AcquireLease(ctx context.Context, req *model.AcquireLeaseRequest) (*model.LeaseGrant, error) {
	if err := s.validator.ValidateAcquire(req); err != nil {
		s.cfg.Log.Warn("Acquire lease validation failed", "error", err)
		return nil, apperrors.Validation("Invalid lease request", map[string]any{"error": err.Error()})
	}

	eventID, customerID, seatIDs, err := parseAcquireIDs(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, seatserrors.ErrEventNotFound) {
			return nil, apperrors.NotFoundWithID("Event", req.EventID)
		}
		return nil, apperrors.Internal("Failed to resolve event", err)
	}

	exists, err := s.customers.Exists(ctx, customerID)
	if err != nil {
		return nil, apperrors.Internal("Failed to resolve customer", err)
	}
	if !exists {
		return nil, apperrors.NotFoundWithID("Customer", req.CustomerID)
	}

	now := time.Now().UTC()
	lease := &model.Lease{
		LockID:     uuid.NewString(),
		CustomerID: customerID,
		EventID:    eventID,
		LockedAt:   now,
		ExpiresAt:  now.Add(s.cfg.LeaseTTL),
	}
	seatNames := make(map[primitive.ObjectID]string, len(seatIDs))

	err = s.leases.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Lapsed leases may still be on disk until the reaper runs; clear
		// the requested seats first so a dead document cannot trip the
		// unique seat index below.
		if _, err := s.leases.DeleteExpiredBySeats(sessCtx, seatIDs, now); err != nil {
			return apperrors.Internal("Failed to clear expired leases", err)
		}

		var failed []string
		var granted []primitive.ObjectID

		for i, seatID := range seatIDs {
			seat, err := s.seats.FindByID(sessCtx, seatID)
			if err != nil {
				if errors.Is(err, seatserrors.ErrSeatNotFound) {
					failed = append(failed, "Unknown seat with ID: "+req.SeatIDs[i])
					continue
				}
				return apperrors.Internal("Failed to resolve seat", err)
			}
			seatNames[seat.ID] = seat.Name

			if seat.EventID != eventID {
				failed = append(failed, seat.Name)
				continue
			}
			if seat.IsTaken {
				failed = append(failed, seat.Name)
				continue
			}

			existing, err := s.leases.FindActiveBySeat(sessCtx, seat.ID, now)
			if err != nil {
				return apperrors.Internal("Failed to check seat leases", err)
			}
			if existing != nil {
				failed = append(failed, seat.Name)
				continue
			}

			granted = append(granted, seat.ID)
		}

		// All-or-nothing: a single blocked seat aborts the whole batch and
		// the caller gets the complete conflict list.
		if len(failed) > 0 {
			return apperrors.Conflict(conflictMessage).
				WithDetails(map[string]any{"failed_seat_names": failed})
		}

		lease.SeatIDs = granted
		return s.leases.Create(sessCtx, lease)
	})
	if err != nil {
		if errors.Is(err, seatserrors.ErrSeatAlreadyLeased) {
			// A concurrent transaction committed an overlapping lease
			// between our scan and our insert; report it as a conflict.
			return nil, s.lostRaceConflict(ctx, seatIDs, seatNames)
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Failed to acquire lease", "event_id", req.EventID, "customer_id", req.CustomerID, "error", err)
		return nil, apperrors.Internal("Failed to lock seats", err)
	}

	s.publish(ctx, events.FromLease(events.TypeLeaseAcquired, lease))
	s.cfg.Log.Info("Lease acquired",
		"lock_id", lease.LockID,
		"event_id", req.EventID,
		"customer_id", req.CustomerID,
		"seats", len(lease.SeatIDs),
		"expires_at", lease.ExpiresAt,
	)

	return &model.LeaseGrant{
		LockID:        lease.LockID,
		LockedSeatIDs: hexIDs(lease.SeatIDs),
		ExpiresAt:     lease.ExpiresAt,
	}, nil
}

func (s *leaseService) ReleaseSeats(ctx context.Context, req *model.ReleaseSeatsRequest) (*model.ReleaseResult, error) {
	if err := s.validator.ValidateRelease(req); err != nil {
		s.cfg.Log.Warn("Release seats validation failed", "error", err)
		return nil, apperrors.Validation("Invalid release request", map[string]any{"error": err.Error()})
	}

	eventID, customerID, releaseIDs, err := parseReleaseIDs(req)
	if err != nil {
		return nil, err
	}

	releaseSet := make(map[primitive.ObjectID]struct{}, len(releaseIDs))
	for _, id := range releaseIDs {
		releaseSet[id] = struct{}{}
	}

	now := time.Now().UTC()
	var result *model.ReleaseResult
	var released *model.Lease

	err = s.leases.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Scoping the lookup by both owner and event is what keeps one
		// customer from releasing seats out of another customer's lease.
		lease, err := s.leases.FindActiveByOwner(sessCtx, customerID, eventID, now)
		if err != nil {
			if errors.Is(err, seatserrors.ErrLeaseNotFound) {
				return apperrors.NotFound("Active lease for this customer and event")
			}
			return apperrors.Internal("Failed to find lease", err)
		}

		var unlocked, kept []primitive.ObjectID
		for _, seatID := range lease.SeatIDs {
			if _, ok := releaseSet[seatID]; ok {
				unlocked = append(unlocked, seatID)
			} else {
				kept = append(kept, seatID)
			}
		}

		if len(unlocked) == 0 {
			return apperrors.InvalidInput("None of the provided seat IDs are held by this lease")
		}

		if len(kept) == 0 {
			if err := s.leases.Delete(sessCtx, lease.ID); err != nil {
				return apperrors.Internal("Failed to remove lease", err)
			}
		} else {
			if err := s.leases.UpdateSeatIDs(sessCtx, lease.ID, kept); err != nil {
				return apperrors.Internal("Failed to update lease", err)
			}
		}

		released = lease
		result = &model.ReleaseResult{
			UnlockedSeatIDs:        hexIDs(unlocked),
			RemainingLockedSeatIDs: hexIDs(kept),
			LockRemoved:            len(kept) == 0,
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Failed to release seats", "event_id", req.EventID, "customer_id", req.CustomerID, "error", err)
		return nil, apperrors.Internal("Failed to unlock seats", err)
	}

	eventType := events.TypeLeaseReleased
	if result.LockRemoved {
		eventType = events.TypeLeaseRemoved
	}
	env := events.FromLease(eventType, released)
	env.SeatIDs = result.UnlockedSeatIDs
	s.publish(ctx, env)

	s.cfg.Log.Info("Seats released",
		"lock_id", released.LockID,
		"event_id", req.EventID,
		"customer_id", req.CustomerID,
		"unlocked", len(result.UnlockedSeatIDs),
		"remaining", len(result.RemainingLockedSeatIDs),
		"lock_removed", result.LockRemoved,
	)
	return result, nil
}

// lostRaceConflict builds the conflict response for an acquire that failed
// on the unique seat index. The losing transaction never saw the winning
// lease, so the blocking seats are re-read outside the aborted transaction;
// this is best effort and may under-report if the winner released quickly.
func (s *leaseService) lostRaceConflict(ctx context.Context, seatIDs []primitive.ObjectID, seatNames map[primitive.ObjectID]string) error {
	now := time.Now().UTC()
	var failed []string

	for _, seatID := range seatIDs {
		lease, err := s.leases.FindActiveBySeat(ctx, seatID, now)
		if err != nil || lease == nil {
			continue
		}
		if name, ok := seatNames[seatID]; ok {
			failed = append(failed, name)
		} else {
			failed = append(failed, seatID.Hex())
		}
	}

	if len(failed) == 0 {
		failed = []string{}
	}
	return apperrors.Conflict(conflictMessage).
		WithDetails(map[string]any{"failed_seat_names": failed})
}

func (s *leaseService) publish(ctx context.Context, env events.Envelope) {
	// The committed lease state is the source of truth; a publish failure is
	// logged and never surfaced to the caller.
	if err := s.publisher.Publish(ctx, env); err != nil {
		s.cfg.Log.Error("Failed to publish lease event", "type", env.Type, "lock_id", env.LockID, "error", err)
	}
}

func parseAcquireIDs(req *model.AcquireLeaseRequest) (primitive.ObjectID, primitive.ObjectID, []primitive.ObjectID, error) {
	eventID, customerID, err := parseOwnerIDs(req.EventID, req.CustomerID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, nil, err
	}
	seatIDs, err := parseSeatIDs(req.SeatIDs)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, nil, err
	}
	return eventID, customerID, seatIDs, nil
}

func parseReleaseIDs(req *model.ReleaseSeatsRequest) (primitive.ObjectID, primitive.ObjectID, []primitive.ObjectID, error) {
	eventID, customerID, err := parseOwnerIDs(req.EventID, req.CustomerID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, nil, err
	}
	seatIDs, err := parseSeatIDs(req.SeatIDsToUnlock)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, nil, err
	}
	return eventID, customerID, seatIDs, nil
}

func parseOwnerIDs(eventID, customerID string) (primitive.ObjectID, primitive.ObjectID, error) {
	eventOID, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, apperrors.InvalidInput("Invalid event ID format")
	}
	customerOID, err := primitive.ObjectIDFromHex(customerID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, apperrors.InvalidInput("Invalid customer ID format")
	}
	return eventOID, customerOID, nil
}

func parseSeatIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, apperrors.InvalidInput("Invalid seat ID format: " + id)
		}
		out = append(out, oid)
	}
	return out, nil
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
