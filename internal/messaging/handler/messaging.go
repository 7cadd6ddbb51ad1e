package handler

import (
	"encoding/json"
	"net/http"

	"stayops/internal/messaging/service"
	"stayops/internal/messaging/validator"
	apperrors "stayops/pkg/errors"
	httputil "stayops/pkg/http"
	"stayops/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type MessagingHandler struct {
	scheduler service.MessageScheduler
	resolver  service.VariableResolver
	validator *validator.MessagingValidator
	log       *logger.Logger
}

func NewMessagingHandler(
	scheduler service.MessageScheduler,
	resolver service.VariableResolver,
	validator *validator.MessagingValidator,
	log *logger.Logger,
) *MessagingHandler {
	return &MessagingHandler{
		scheduler: scheduler,
		resolver:  resolver,
		validator: validator,
		log:       log,
	}
}

// GuestVerified is the verification hook: contract kickoff plus scheduling
// of every trigger's templates for the guest.
func (h *MessagingHandler) GuestVerified(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	guestID := ps.ByName("guest_id")

	result, err := h.scheduler.ScheduleForGuest(r.Context(), guestID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GuestVerified", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "GuestVerified", "operation", "WriteCreated", "error", err)
	}
}

func (h *MessagingHandler) ReservationEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	guestID := ps.ByName("guest_id")

	var req validator.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ReservationEvent", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	event, err := h.validator.ValidateEvent(&req)
	if err != nil {
		h.log.Warn("Event hook validation failed", "guest_id", guestID, "error", err)
		if writeErr := httputil.WriteError(w, apperrors.Validation("Invalid event", map[string]any{"error": err.Error()})); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ReservationEvent", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	result, err := h.scheduler.ScheduleForEvent(r.Context(), guestID, event)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ReservationEvent", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "ReservationEvent", "operation", "WriteCreated", "error", err)
	}
}

func (h *MessagingHandler) Variables(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservationID := ps.ByName("reservation_id")

	vars := h.resolver.Resolve(r.Context(), reservationID)

	if err := httputil.WriteSuccess(w, vars); err != nil {
		h.log.Error("failed to write success response", "handler", "Variables", "operation", "WriteSuccess", "error", err)
	}
}

// Render is a preview endpoint for the delivery worker and template authors.
func (h *MessagingHandler) Render(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req validator.RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Render", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.validator.ValidateRender(&req); err != nil {
		h.log.Warn("Render validation failed", "error", err)
		if writeErr := httputil.WriteError(w, apperrors.Validation("Invalid render request", map[string]any{"error": err.Error()})); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Render", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	vars := h.resolver.Resolve(r.Context(), req.ReservationID)
	rendered := h.resolver.Render(req.Content, vars)

	if err := httputil.WriteSuccess(w, map[string]string{"rendered": rendered}); err != nil {
		h.log.Error("failed to write success response", "handler", "Render", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MessagingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservationID := ps.ByName("reservation_id")

	count, err := h.scheduler.CancelForReservation(r.Context(), reservationID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]int64{"cancelled": count}); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MessagingHandler) ListScheduled(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListScheduled", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	entries, total, err := h.scheduler.ListScheduled(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListScheduled", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, entries, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListScheduled", "operation", "WritePaginated", "error", err)
	}
}

func (h *MessagingHandler) ListForReservation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservationID := ps.ByName("reservation_id")

	entries, err := h.scheduler.ListForReservation(r.Context(), reservationID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListForReservation", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, entries); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForReservation", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MessagingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/hooks/guests/:guest_id/verified", h.GuestVerified)
	router.POST("/api/v1/hooks/guests/:guest_id/events", h.ReservationEvent)
	router.GET("/api/v1/reservations/:reservation_id/variables", h.Variables)
	router.GET("/api/v1/reservations/:reservation_id/messages", h.ListForReservation)
	router.POST("/api/v1/messages/render", h.Render)
	router.GET("/api/v1/messages/scheduled", h.ListScheduled)
	router.DELETE("/api/v1/reservations/:reservation_id/messages", h.Cancel)
}
