package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"seatlease/pkg/model"
)

func TestValidateAcquire_Valid(t *testing.T) {
	v := NewLeaseValidator()

	err := v.ValidateAcquire(&model.AcquireLeaseRequest{
		EventID:    primitive.NewObjectID().Hex(),
		CustomerID: primitive.NewObjectID().Hex(),
		SeatIDs:    []string{primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex()},
	})

	assert.NoError(t, err)
}

func TestValidateAcquire_Invalid(t *testing.T) {
	v := NewLeaseValidator()
	validID := primitive.NewObjectID().Hex()

	manySeats := make([]string, 51)
	for i := range manySeats {
		manySeats[i] = primitive.NewObjectID().Hex()
	}

	cases := []struct {
		name    string
		req     *model.AcquireLeaseRequest
		wantMsg string
	}{
		{
			name:    "missing event id",
			req:     &model.AcquireLeaseRequest{CustomerID: validID, SeatIDs: []string{validID}},
			wantMsg: "EventID is required",
		},
		{
			name:    "missing customer id",
			req:     &model.AcquireLeaseRequest{EventID: validID, SeatIDs: []string{validID}},
			wantMsg: "CustomerID is required",
		},
		{
			name:    "no seats",
			req:     &model.AcquireLeaseRequest{EventID: validID, CustomerID: validID, SeatIDs: []string{}},
			wantMsg: "SeatIDs",
		},
		{
			name:    "too many seats",
			req:     &model.AcquireLeaseRequest{EventID: validID, CustomerID: validID, SeatIDs: manySeats},
			wantMsg: "SeatIDs must contain at most 50 element(s)",
		},
		{
			name:    "malformed event id",
			req:     &model.AcquireLeaseRequest{EventID: "evt-123", CustomerID: validID, SeatIDs: []string{validID}},
			wantMsg: "EventID must be a valid MongoDB ObjectID",
		},
		{
			name:    "malformed seat id",
			req:     &model.AcquireLeaseRequest{EventID: validID, CustomerID: validID, SeatIDs: []string{"front-row-3"}},
			wantMsg: "must be a valid MongoDB ObjectID",
		},
		{
			name:    "duplicate seat ids",
			req:     &model.AcquireLeaseRequest{EventID: validID, CustomerID: validID, SeatIDs: []string{validID, validID}},
			wantMsg: "seat_ids must not contain duplicates",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateAcquire(tc.req)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.wantMsg),
				"error %q should mention %q", err.Error(), tc.wantMsg)
		})
	}
}

func TestValidateRelease(t *testing.T) {
	v := NewLeaseValidator()
	validID := primitive.NewObjectID().Hex()

	err := v.ValidateRelease(&model.ReleaseSeatsRequest{
		EventID:         validID,
		CustomerID:      validID,
		SeatIDsToUnlock: []string{primitive.NewObjectID().Hex()},
	})
	assert.NoError(t, err)

	err = v.ValidateRelease(&model.ReleaseSeatsRequest{
		EventID:    validID,
		CustomerID: validID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SeatIDsToUnlock")

	err = v.ValidateRelease(&model.ReleaseSeatsRequest{
		EventID:         validID,
		CustomerID:      validID,
		SeatIDsToUnlock: []string{validID, validID},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not contain duplicates")
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "EventID", Message: "EventID is required"},
		{Field: "SeatIDs", Message: "SeatIDs must contain at least 1 element(s)"},
	}

	msg := errs.Error()
	assert.Contains(t, msg, "2 error(s)")
	assert.Contains(t, msg, "EventID: EventID is required")

	assert.Empty(t, ValidationErrors{}.Error())
}
