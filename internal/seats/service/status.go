package service

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"seatlease/pkg/model"
)

// ProjectSeatStatuses derives the status of every seat from its permanent
// taken flag and the leases active at one instant. The now argument is
// sampled once by the caller so a single response cannot mix two clocks:
// taken wins over everything, then locked, then available.
func ProjectSeatStatuses(seats []*model.Seat, leases []*model.Lease, now time.Time) []model.SeatView {
	locked := make(map[primitive.ObjectID]struct{})
	for _, lease := range leases {
		if lease.Expired(now) {
			continue
		}
		for _, seatID := range lease.SeatIDs {
			locked[seatID] = struct{}{}
		}
	}

	views := make([]model.SeatView, 0, len(seats))
	for _, seat := range seats {
		status := model.SeatAvailable
		if seat.IsTaken {
			status = model.SeatTaken
		} else if _, ok := locked[seat.ID]; ok {
			status = model.SeatLocked
		}

		views = append(views, model.SeatView{
			SeatID: seat.SeatID,
			ID:     seat.ID.Hex(),
			Name:   seat.Name,
			Status: status,
		})
	}
	return views
}
