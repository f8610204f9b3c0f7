package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"seatlease/internal/seats/service"
	apperrors "seatlease/pkg/errors"
	httputil "seatlease/pkg/http"
	"seatlease/pkg/logger"
	"seatlease/pkg/model"
)

type SeatHandler struct {
	service service.LeaseService
	log     *logger.Logger
}

func NewSeatHandler(service service.LeaseService, log *logger.Logger) *SeatHandler {
	return &SeatHandler{
		service: service,
		log:     log,
	}
}

func (h *SeatHandler) GetEventSeats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventCode := ps.ByName("eventID")

	seats, err := h.service.GetEventSeats(r.Context(), eventCode)
	if err != nil {
		h.writeError(w, "GetEventSeats", err)
		return
	}

	if err := httputil.WriteSuccess(w, seats); err != nil {
		h.log.Error("failed to write success response", "handler", "GetEventSeats", "error", err)
	}
}

func (h *SeatHandler) Lock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AcquireLeaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Lock", apperrors.InvalidInput("Invalid request body"))
		return
	}

	grant, err := h.service.AcquireLease(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Lock", err)
		return
	}

	if err := httputil.WriteSuccess(w, grant); err != nil {
		h.log.Error("failed to write success response", "handler", "Lock", "error", err)
	}
}

func (h *SeatHandler) Unlock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ReleaseSeatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Unlock", apperrors.InvalidInput("Invalid request body"))
		return
	}

	result, err := h.service.ReleaseSeats(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Unlock", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Unlock", "error", err)
	}
}

// writeError renders conflicts with the full blocking-seat list so a caller
// can adjust its whole selection in one round trip; everything else goes
// through the shared error writer.
func (h *SeatHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	appErr := apperrors.AsAppError(err)

	if appErr.Code == apperrors.CodeConflict {
		conflict := model.LeaseConflict{
			Message:         appErr.Message,
			FailedSeatNames: failedSeatNames(appErr),
			LockedSeatIDs:   []string{},
		}
		if writeErr := httputil.WriteJSON(w, http.StatusConflict, conflict); writeErr != nil {
			h.log.Error("failed to write conflict response", "handler", handlerName, "error", writeErr)
		}
		return
	}

	if writeErr := httputil.WriteError(w, appErr); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func failedSeatNames(appErr *apperrors.AppError) []string {
	if appErr.Details == nil {
		return []string{}
	}
	names, ok := appErr.Details["failed_seat_names"].([]string)
	if !ok {
		return []string{}
	}
	return names
}

func (h *SeatHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/events/:eventID/seats", h.GetEventSeats)
	router.POST("/api/v1/seats/lock", h.Lock)
	router.POST("/api/v1/seats/unlock", h.Unlock)
}
