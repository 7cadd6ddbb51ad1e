package service

import (
	"context"
	"errors"
	"time"

	"stayops/internal/events"
	"stayops/internal/lockvendor"
	"stayops/internal/notify"
	passcodeserrors "stayops/internal/passcodes/errors"
	"stayops/internal/passcodes/repository"
	reservationserrors "stayops/internal/reservations/errors"
	reservationsrepo "stayops/internal/reservations/repository"
	"stayops/pkg/config"
	apperrors "stayops/pkg/errors"
	"stayops/pkg/model"
	"stayops/pkg/sanitizer"
)

// LockVendor is the outbound lock API surface the lifecycle needs.
type LockVendor interface {
	CreateTemporaryCode(ctx context.Context, deviceID string, validFrom, validUntil time.Time) (*lockvendor.TemporaryCode, error)
	DeleteCode(ctx context.Context, deviceID, codeID string) error
}

// Notifier sends operator SMS for lifecycle events. Implementations never
// return an error; callers inspect the SendResult and log.
type Notifier interface {
	ManualEntryRequested(ctx context.Context, reservation *model.Reservation, property *model.Property, entry *model.PasscodeEntry) notify.SendResult
	PasscodeReady(ctx context.Context, reservation *model.Reservation, property *model.Property, entry *model.PasscodeEntry) notify.SendResult
	GenerationFailed(ctx context.Context, reservation *model.Reservation, property *model.Property, cause error) notify.SendResult
}

// GenerateResult is what the request layer and sweep get back from Generate.
// Entry is nil for traditional-access properties.
type GenerateResult struct {
	Mode                model.AccessMode     `json:"mode"`
	Entry               *model.PasscodeEntry `json:"entry,omitempty"`
	RequiresManualEntry bool                 `json:"requires_manual_entry"`
}

type PasscodeLifecycle interface {
	ComputeValidityWindow(checkIn, checkOut time.Time) (time.Time, time.Time)
	ShouldGenerate(ctx context.Context, reservation *model.Reservation, now time.Time) (bool, error)
	Generate(ctx context.Context, reservationID string) (*GenerateResult, error)
	RecordManualCode(ctx context.Context, entryID, code string) (*model.PasscodeEntry, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	Revoke(ctx context.Context, reservationID string) error
	GetCurrent(ctx context.Context, reservationID string) (*model.PasscodeEntry, error)
}

type passcodeLifecycle struct {
	repo            repository.PasscodeRepository
	reservationRepo reservationsrepo.ReservationRepository
	propertyRepo    reservationsrepo.PropertyRepository
	vendor          LockVendor
	notifier        Notifier
	publisher       events.Publisher
	cfg             *config.Config
}

func NewPasscodeLifecycle(
	repo repository.PasscodeRepository,
	reservationRepo reservationsrepo.ReservationRepository,
	propertyRepo reservationsrepo.PropertyRepository,
	vendor LockVendor,
	notifier Notifier,
	publisher events.Publisher,
	cfg *config.Config,
) PasscodeLifecycle {
	return &passcodeLifecycle{
		repo:            repo,
		reservationRepo: reservationRepo,
		propertyRepo:    propertyRepo,
		vendor:          vendor,
		notifier:        notifier,
		publisher:       publisher,
		cfg:             cfg,
	}
}

// ComputeValidityWindow pads the stay with the configured buffer on both
// sides, so early arrivals and late checkouts still open the door.
func (s *passcodeLifecycle) ComputeValidityWindow(checkIn, checkOut time.Time) (time.Time, time.Time) {
	return checkIn.Add(-s.cfg.PasscodeValidityBuffer), checkOut.Add(s.cfg.PasscodeValidityBuffer)
}

// ShouldGenerate reports whether the sweep may create a code now: the
// reservation takes guests, the generation window has opened (boundary
// instant included), and no non-revoked entry occupies the slot.
func (s *passcodeLifecycle) ShouldGenerate(ctx context.Context, reservation *model.Reservation, now time.Time) (bool, error) {
	if !reservation.GenerationEligible() {
		return false, nil
	}

	windowOpens := reservation.CheckIn.Add(-s.cfg.PasscodeLeadTime)
	if now.Before(windowOpens) {
		return false, nil
	}

	_, err := s.repo.FindCurrentByReservation(ctx, reservation.ID)
	if err != nil {
		if errors.Is(err, passcodeserrors.ErrNotFound) {
			return true, nil
		}
		return false, apperrors.Internal("Failed to check existing passcode entry", err)
	}

	return false, nil
}

func (s *passcodeLifecycle) Generate(ctx context.Context, reservationID string) (*GenerateResult, error) {
	if reservationID == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.loadReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if !reservation.GenerationEligible() {
		return nil, apperrors.Validation("Reservation cannot receive a passcode", map[string]any{
			"reservation_id": reservationID,
			"status":         reservation.Status,
		})
	}

	// Idempotency guard: the fast path is a read, the race-proof path is
	// the unique index behind repo.Create.
	if _, err := s.repo.FindCurrentByReservation(ctx, reservationID); err == nil {
		return nil, apperrors.ConflictFrom(passcodeserrors.ErrAlreadyExists, "A passcode entry already exists for this reservation")
	} else if !errors.Is(err, passcodeserrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to check existing passcode entry", err)
	}

	property, err := s.loadProperty(ctx, reservation.PropertyID)
	if err != nil {
		return nil, err
	}

	switch property.Access.Mode {
	case model.AccessTraditional:
		s.cfg.Log.Info("Property uses traditional access, no passcode needed",
			"reservation_id", reservationID,
			"property_id", property.ID,
		)
		return &GenerateResult{Mode: model.AccessTraditional}, nil

	case model.AccessManual:
		return s.generateManual(ctx, reservation, property)

	case model.AccessVendorLock:
		return s.generateVendorLock(ctx, reservation, property)

	default:
		return nil, apperrors.Validation("Property has an unknown access mode", map[string]any{
			"property_id": property.ID,
			"mode":        property.Access.Mode,
		})
	}
}

func (s *passcodeLifecycle) generateManual(ctx context.Context, reservation *model.Reservation, property *model.Property) (*GenerateResult, error) {
	validFrom, validUntil := s.ComputeValidityWindow(reservation.CheckIn, reservation.CheckOut)

	entry := &model.PasscodeEntry{
		ReservationID: reservation.ID,
		PropertyID:    property.ID,
		ValidFrom:     validFrom,
		ValidUntil:    validUntil,
		Method:        model.MethodManual,
		Status:        model.PasscodePending,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		if errors.Is(err, passcodeserrors.ErrAlreadyExists) {
			return nil, apperrors.ConflictFrom(err, "A passcode entry already exists for this reservation")
		}
		return nil, apperrors.Internal("Failed to create passcode entry", err)
	}

	s.cfg.Log.Info("Manual passcode entry created, host must set the code",
		"reservation_id", reservation.ID,
		"entry_id", entry.ID,
	)

	if result := s.notifier.ManualEntryRequested(ctx, reservation, property, entry); !result.Delivered {
		s.cfg.Log.Warn("Manual-entry notification was not delivered",
			"reservation_id", reservation.ID,
			"error", result.Err,
		)
	}
	s.publish(ctx, events.PasscodeManualRequested, reservation.ID, entry)

	return &GenerateResult{
		Mode:                model.AccessManual,
		Entry:               entry,
		RequiresManualEntry: true,
	}, nil
}

func (s *passcodeLifecycle) generateVendorLock(ctx context.Context, reservation *model.Reservation, property *model.Property) (*GenerateResult, error) {
	devices := sanitizer.NormalizeDeviceIDs(property.Access.DeviceIDs)
	if len(devices) == 0 {
		return nil, apperrors.Validation("Property has no lock devices configured", map[string]any{
			"property_id": property.ID,
		})
	}

	validFrom, validUntil := s.ComputeValidityWindow(reservation.CheckIn, reservation.CheckOut)
	primaryDevice := devices[0]

	code, err := s.vendor.CreateTemporaryCode(ctx, primaryDevice, validFrom, validUntil)
	if err != nil {
		s.cfg.Log.Error("Lock vendor failed to create temporary code",
			"reservation_id", reservation.ID,
			"device_id", primaryDevice,
			"error", err,
		)
		// Nothing is persisted: the next sweep tick retries while the
		// generation window stays open.
		if result := s.notifier.GenerationFailed(ctx, reservation, property, err); !result.Delivered {
			s.cfg.Log.Warn("Generation-failure notification was not delivered",
				"reservation_id", reservation.ID,
				"error", result.Err,
			)
		}
		s.publish(ctx, events.PasscodeGenerationFailed, reservation.ID, map[string]any{
			"reservation_id": reservation.ID,
			"property_id":    property.ID,
			"device_id":      primaryDevice,
			"error":          err.Error(),
		})
		return nil, apperrors.Vendor("Lock vendor failed to create a temporary code", err)
	}

	entry := &model.PasscodeEntry{
		ReservationID: reservation.ID,
		PropertyID:    property.ID,
		Code:          &code.Code,
		ValidFrom:     validFrom,
		ValidUntil:    validUntil,
		Method:        model.MethodAuto,
		Status:        model.PasscodeActive,
		Vendor: &model.VendorMetadata{
			DeviceID: primaryDevice,
			CodeID:   code.CodeID,
			Extra:    code.Extra,
		},
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		if errors.Is(err, passcodeserrors.ErrAlreadyExists) {
			// Lost the race to a concurrent generate; clean up our
			// vendor-side code so it does not linger on the device.
			if delErr := s.vendor.DeleteCode(ctx, primaryDevice, code.CodeID); delErr != nil {
				s.cfg.Log.Warn("Failed to delete orphaned vendor code after conflict",
					"reservation_id", reservation.ID,
					"device_id", primaryDevice,
					"code_id", code.CodeID,
					"error", delErr,
				)
			}
			return nil, apperrors.ConflictFrom(err, "A passcode entry already exists for this reservation")
		}
		return nil, apperrors.Internal("Failed to create passcode entry", err)
	}

	s.cfg.Log.Info("Vendor passcode generated",
		"reservation_id", reservation.ID,
		"entry_id", entry.ID,
		"device_id", primaryDevice,
		"valid_from", validFrom,
		"valid_until", validUntil,
	)

	if result := s.notifier.PasscodeReady(ctx, reservation, property, entry); !result.Delivered {
		s.cfg.Log.Warn("Passcode-ready notification was not delivered",
			"reservation_id", reservation.ID,
			"error", result.Err,
		)
	}
	s.publish(ctx, events.PasscodeReady, reservation.ID, entry)

	return &GenerateResult{
		Mode:  model.AccessVendorLock,
		Entry: entry,
	}, nil
}

func (s *passcodeLifecycle) RecordManualCode(ctx context.Context, entryID, code string) (*model.PasscodeEntry, error) {
	if entryID == "" {
		return nil, apperrors.InvalidInput("Entry ID cannot be empty")
	}

	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, passcodeserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Passcode entry", entryID)
		}
		if errors.Is(err, passcodeserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid entry ID format")
		}
		return nil, apperrors.Internal("Failed to load passcode entry", err)
	}

	if entry.Method != model.MethodManual {
		return nil, apperrors.ConflictFrom(passcodeserrors.ErrNotManual, "Codes can only be recorded on manual passcode entries")
	}

	// Expired and revoked entries are terminal; activating one here would
	// put a second non-revoked entry next to a freshly generated one.
	if entry.Status != model.PasscodePending {
		return nil, apperrors.ConflictFrom(passcodeserrors.ErrNotPending, "Passcode entry is no longer awaiting a code")
	}

	updated, err := s.repo.SetCode(ctx, entryID, code)
	if err != nil {
		if errors.Is(err, passcodeserrors.ErrNotPending) {
			return nil, apperrors.ConflictFrom(err, "Passcode entry is no longer awaiting a code")
		}
		return nil, apperrors.Internal("Failed to record manual code", err)
	}

	s.cfg.Log.Info("Manual passcode recorded",
		"entry_id", entryID,
		"reservation_id", updated.ReservationID,
	)
	s.publish(ctx, events.PasscodeReady, updated.ReservationID, updated)

	return updated, nil
}

func (s *passcodeLifecycle) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.repo.ExpireDue(ctx, now)
	if err != nil {
		return 0, apperrors.Internal("Failed to expire passcodes", err)
	}

	if count > 0 {
		s.cfg.Log.Info("Expired passcodes past their validity window", "count", count)
		s.publish(ctx, events.PasscodeExpired, "", map[string]any{
			"expired_count": count,
			"as_of":         now,
		})
	}

	return count, nil
}

// Revoke tears the entry down. Vendor-side deletion is best effort: the
// operator's intent wins and orphaned vendor codes die with their window.
func (s *passcodeLifecycle) Revoke(ctx context.Context, reservationID string) error {
	if reservationID == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	entry, err := s.repo.FindCurrentByReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, passcodeserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Passcode entry", reservationID)
		}
		return apperrors.Internal("Failed to load passcode entry", err)
	}

	if entry.Method == model.MethodAuto && entry.Vendor != nil && entry.Vendor.CodeID != "" {
		if err := s.vendor.DeleteCode(ctx, entry.Vendor.DeviceID, entry.Vendor.CodeID); err != nil {
			s.cfg.Log.Warn("Failed to delete vendor code during revoke",
				"reservation_id", reservationID,
				"device_id", entry.Vendor.DeviceID,
				"code_id", entry.Vendor.CodeID,
				"error", err,
			)
		}
	}

	if err := s.repo.SetStatus(ctx, entry.ID, model.PasscodeRevoked); err != nil {
		return apperrors.Internal("Failed to revoke passcode entry", err)
	}

	s.cfg.Log.Info("Passcode revoked",
		"reservation_id", reservationID,
		"entry_id", entry.ID,
	)
	s.publish(ctx, events.PasscodeRevoked, reservationID, map[string]any{
		"reservation_id": reservationID,
		"entry_id":       entry.ID,
	})

	return nil
}

func (s *passcodeLifecycle) GetCurrent(ctx context.Context, reservationID string) (*model.PasscodeEntry, error) {
	if reservationID == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	entry, err := s.repo.FindCurrentByReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, passcodeserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Passcode entry", reservationID)
		}
		return nil, apperrors.Internal("Failed to load passcode entry", err)
	}

	return entry, nil
}

func (s *passcodeLifecycle) loadReservation(ctx context.Context, id string) (*model.Reservation, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrReservationNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to load reservation", err)
	}
	return reservation, nil
}

func (s *passcodeLifecycle) loadProperty(ctx context.Context, id string) (*model.Property, error) {
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrPropertyNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		return nil, apperrors.Internal("Failed to load property", err)
	}
	return property, nil
}

// publish emits a domain event; failures are logged and never surface.
func (s *passcodeLifecycle) publish(ctx context.Context, eventType string, key string, payload any) {
	if err := s.publisher.Publish(ctx, eventType, key, payload); err != nil {
		s.cfg.Log.Warn("Failed to publish domain event",
			"event_type", eventType,
			"key", key,
			"error", err,
		)
	}
}
