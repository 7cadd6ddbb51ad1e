package service

import (
	"context"
	"errors"
	"time"

	"stayops/internal/events"
	messagingerrors "stayops/internal/messaging/errors"
	messagingrepo "stayops/internal/messaging/repository"
	reservationserrors "stayops/internal/reservations/errors"
	reservationsrepo "stayops/internal/reservations/repository"
	"stayops/pkg/clock"
	"stayops/pkg/config"
	apperrors "stayops/pkg/errors"
	"stayops/pkg/model"
	"stayops/pkg/sanitizer"
)

// ContractCreator triggers rental agreement creation after a guest is
// verified. Treated as best effort: scheduling proceeds on failure.
type ContractCreator interface {
	Create(guestID, reservationID string) error
}

// ScheduleResult reports one scheduling run.
type ScheduleResult struct {
	Scheduled []*model.ScheduledMessageEntry `json:"scheduled"`
	Skipped   int                            `json:"skipped"`
}

type MessageScheduler interface {
	ScheduleForGuest(ctx context.Context, guestID string) (*ScheduleResult, error)
	ScheduleForEvent(ctx context.Context, guestID string, event model.TriggerEvent) (*ScheduleResult, error)
	CancelForReservation(ctx context.Context, reservationID string) (int64, error)
	ListScheduled(ctx context.Context, limit int, offset int64) ([]*model.ScheduledMessageEntry, int64, error)
	ListForReservation(ctx context.Context, reservationID string) ([]*model.ScheduledMessageEntry, error)
}

type messageScheduler struct {
	templates    messagingrepo.TemplateRepository
	scheduled    messagingrepo.ScheduledMessageRepository
	guests       reservationsrepo.GuestRepository
	reservations reservationsrepo.ReservationRepository
	contracts    ContractCreator
	publisher    events.Publisher
	clk          clock.Clock
	cfg          *config.Config
}

func NewMessageScheduler(
	templates messagingrepo.TemplateRepository,
	scheduled messagingrepo.ScheduledMessageRepository,
	guests reservationsrepo.GuestRepository,
	reservations reservationsrepo.ReservationRepository,
	contracts ContractCreator,
	publisher events.Publisher,
	clk clock.Clock,
	cfg *config.Config,
) MessageScheduler {
	return &messageScheduler{
		templates:    templates,
		scheduled:    scheduled,
		guests:       guests,
		reservations: reservations,
		contracts:    contracts,
		publisher:    publisher,
		clk:          clk,
		cfg:          cfg,
	}
}

// ScheduleForGuest is the single entry point after guest verification:
// it materializes every trigger's templates, then kicks off contract
// creation as a best-effort follow-up.
func (s *messageScheduler) ScheduleForGuest(ctx context.Context, guestID string) (*ScheduleResult, error) {
	guest, reservation, err := s.loadGuestContext(ctx, guestID)
	if err != nil {
		return nil, err
	}

	combined := &ScheduleResult{}
	for _, trigger := range []model.TriggerEvent{model.TriggerVerification, model.TriggerCheckIn, model.TriggerCheckOut} {
		result, err := s.scheduleTrigger(ctx, guest, reservation, trigger)
		if err != nil {
			return nil, err
		}
		combined.Scheduled = append(combined.Scheduled, result.Scheduled...)
		combined.Skipped += result.Skipped
	}

	if s.contracts != nil {
		if err := s.contracts.Create(guest.ID, reservation.ID); err != nil {
			s.cfg.Log.Error("Contract creation failed after scheduling",
				"guest_id", guest.ID, "reservation_id", reservation.ID, "error", err)
		}
	}

	s.publishScheduled(ctx, reservation.ID, combined)
	return combined, nil
}

func (s *messageScheduler) ScheduleForEvent(ctx context.Context, guestID string, event model.TriggerEvent) (*ScheduleResult, error) {
	switch event {
	case model.TriggerVerification, model.TriggerCheckIn, model.TriggerCheckOut:
	default:
		return nil, apperrors.Validation("Unknown trigger event", map[string]any{"event": string(event)})
	}

	guest, reservation, err := s.loadGuestContext(ctx, guestID)
	if err != nil {
		return nil, err
	}

	result, err := s.scheduleTrigger(ctx, guest, reservation, event)
	if err != nil {
		return nil, err
	}

	s.publishScheduled(ctx, reservation.ID, result)
	return result, nil
}

func (s *messageScheduler) CancelForReservation(ctx context.Context, reservationID string) (int64, error) {
	count, err := s.scheduled.CancelForReservation(ctx, reservationID)
	if err != nil {
		return 0, apperrors.Internal("Failed to cancel scheduled messages", err)
	}

	if count > 0 {
		if err := s.publisher.Publish(ctx, events.MessagesCancelled, reservationID, map[string]any{
			"reservation_id": reservationID,
			"cancelled":      count,
		}); err != nil {
			s.cfg.Log.Error("Failed to publish messages cancelled event",
				"reservation_id", reservationID, "error", err)
		}
	}

	s.cfg.Log.Info("Cancelled scheduled messages", "reservation_id", reservationID, "count", count)
	return count, nil
}

func (s *messageScheduler) ListScheduled(ctx context.Context, limit int, offset int64) ([]*model.ScheduledMessageEntry, int64, error) {
	entries, err := s.scheduled.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list scheduled messages", err)
	}

	total, err := s.scheduled.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count scheduled messages", err)
	}

	return entries, total, nil
}

func (s *messageScheduler) ListForReservation(ctx context.Context, reservationID string) ([]*model.ScheduledMessageEntry, error) {
	entries, err := s.scheduled.FindByReservation(ctx, reservationID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list scheduled messages", err)
	}

	return entries, nil
}

func (s *messageScheduler) loadGuestContext(ctx context.Context, guestID string) (*model.Guest, *model.Reservation, error) {
	guest, err := s.guests.FindByID(ctx, guestID)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrGuestNotFound) {
			return nil, nil, apperrors.NotFoundWithID("Guest", guestID)
		}
		if errors.Is(err, reservationserrors.ErrInvalidID) {
			return nil, nil, apperrors.InvalidInput("Invalid guest ID format")
		}
		return nil, nil, apperrors.Internal("Failed to load guest", err)
	}

	reservation, err := s.reservations.FindByID(ctx, guest.ReservationID)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrReservationNotFound) {
			return nil, nil, apperrors.NotFoundWithID("Reservation", guest.ReservationID)
		}
		return nil, nil, apperrors.Internal("Failed to load reservation", err)
	}

	return guest, reservation, nil
}

// scheduleTrigger materializes one trigger's templates for a guest. Past
// send times and already-scheduled (template, guest) pairs are skipped.
func (s *messageScheduler) scheduleTrigger(ctx context.Context, guest *model.Guest, reservation *model.Reservation, trigger model.TriggerEvent) (*ScheduleResult, error) {
	templates, err := s.templates.FindActiveByTrigger(ctx, trigger)
	if err != nil {
		return nil, apperrors.Internal("Failed to load message templates", err)
	}

	now := s.clk.Now().UTC()
	result := &ScheduleResult{}

	for _, template := range templates {
		scheduledFor := sendTime(template, reservation, now)

		if scheduledFor.Before(now) {
			s.cfg.Log.Info("Skipping template with past send time",
				"template_id", template.ID, "guest_id", guest.ID,
				"scheduled_for", scheduledFor, "trigger", trigger)
			result.Skipped++
			continue
		}

		exists, err := s.scheduled.ExistsForTemplateAndGuest(ctx, template.ID, guest.ID)
		if err != nil {
			return nil, apperrors.Internal("Failed to check for existing schedule", err)
		}
		if exists {
			s.cfg.Log.Info("Skipping already scheduled template",
				"template_id", template.ID, "guest_id", guest.ID)
			result.Skipped++
			continue
		}

		entry := &model.ScheduledMessageEntry{
			TemplateID:    template.ID,
			ReservationID: reservation.ID,
			GuestID:       guest.ID,
			ScheduledFor:  scheduledFor,
			Status:        model.MessageScheduled,
			Channels:      sanitizer.NormalizeChannels(template.Channels),
		}

		if err := s.scheduled.Create(ctx, entry); err != nil {
			// A concurrent hook delivery won the index race; same as the
			// exists check above.
			if errors.Is(err, messagingerrors.ErrDuplicateSchedule) {
				s.cfg.Log.Info("Duplicate schedule rejected by index",
					"template_id", template.ID, "guest_id", guest.ID)
				result.Skipped++
				continue
			}
			return nil, apperrors.Internal("Failed to persist scheduled message", err)
		}

		result.Scheduled = append(result.Scheduled, entry)
	}

	return result, nil
}

// sendTime computes when a template fires: verification templates fire
// immediately, stay-anchored templates fire at the reservation timestamp
// shifted by the template offset.
func sendTime(template *model.MessageTemplate, reservation *model.Reservation, now time.Time) time.Time {
	var base time.Time
	switch template.TriggerEvent {
	case model.TriggerVerification:
		return now
	case model.TriggerCheckIn:
		base = reservation.CheckIn
	case model.TriggerCheckOut:
		base = reservation.CheckOut
	default:
		return now
	}

	offset := template.Offset.Duration()
	if template.Offset.Direction == model.DirectionBefore {
		return base.Add(-offset)
	}
	return base.Add(offset)
}

func (s *messageScheduler) publishScheduled(ctx context.Context, reservationID string, result *ScheduleResult) {
	if len(result.Scheduled) == 0 {
		return
	}

	if err := s.publisher.Publish(ctx, events.MessagesScheduled, reservationID, map[string]any{
		"reservation_id": reservationID,
		"scheduled":      len(result.Scheduled),
		"skipped":        result.Skipped,
	}); err != nil {
		s.cfg.Log.Error("Failed to publish messages scheduled event",
			"reservation_id", reservationID, "error", err)
	}
}

