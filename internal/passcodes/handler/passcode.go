package handler

import (
	"encoding/json"
	"net/http"

	"stayops/internal/passcodes/service"
	"stayops/internal/passcodes/validator"
	"stayops/internal/sweeper"
	apperrors "stayops/pkg/errors"
	httputil "stayops/pkg/http"
	"stayops/pkg/logger"
	"stayops/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// SweepStatusReporter exposes the background loop's snapshot to operators.
type SweepStatusReporter interface {
	Status() sweeper.Status
}

type PasscodeHandler struct {
	lifecycle service.PasscodeLifecycle
	validator *validator.PasscodeValidator
	sweep     SweepStatusReporter
	log       *logger.Logger
}

func NewPasscodeHandler(
	lifecycle service.PasscodeLifecycle,
	validator *validator.PasscodeValidator,
	sweep SweepStatusReporter,
	log *logger.Logger,
) *PasscodeHandler {
	return &PasscodeHandler{
		lifecycle: lifecycle,
		validator: validator,
		sweep:     sweep,
		log:       log,
	}
}

// Generate is the operator's "generate now" path; it shares Generate's
// idempotency guard with the sweep.
func (h *PasscodeHandler) Generate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservationID := ps.ByName("reservation_id")

	result, err := h.lifecycle.Generate(r.Context(), reservationID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Generate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if result.Mode == model.AccessTraditional {
		if err := httputil.WriteSuccess(w, result); err != nil {
			h.log.Error("failed to write success response", "handler", "Generate", "operation", "WriteSuccess", "error", err)
		}
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Generate", "operation", "WriteCreated", "error", err)
	}
}

func (h *PasscodeHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservationID := ps.ByName("reservation_id")

	entry, err := h.lifecycle.GetCurrent(r.Context(), reservationID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, entry); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PasscodeHandler) RecordManualCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	entryID := ps.ByName("entry_id")

	var req validator.RecordCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "RecordManualCode", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	code, err := h.validator.ValidateRecordCode(&req)
	if err != nil {
		h.log.Warn("Manual code validation failed", "entry_id", entryID, "error", err)
		if writeErr := httputil.WriteError(w, apperrors.Validation("Invalid manual code", map[string]any{"error": err.Error()})); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RecordManualCode", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	entry, err := h.lifecycle.RecordManualCode(r.Context(), entryID, code)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RecordManualCode", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, entry); err != nil {
		h.log.Error("failed to write success response", "handler", "RecordManualCode", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PasscodeHandler) Revoke(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservationID := ps.ByName("reservation_id")

	if err := h.lifecycle.Revoke(r.Context(), reservationID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Revoke", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PasscodeHandler) SweepStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.sweep.Status()); err != nil {
		h.log.Error("failed to write success response", "handler", "SweepStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PasscodeHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/passcodes/:reservation_id/generate", h.Generate)
	router.GET("/api/v1/passcodes/:reservation_id", h.Get)
	router.PUT("/api/v1/passcodes/entries/:entry_id/code", h.RecordManualCode)
	router.DELETE("/api/v1/passcodes/:reservation_id", h.Revoke)
	router.GET("/api/v1/sweep/status", h.SweepStatus)
}
