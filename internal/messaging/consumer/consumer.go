package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"stayops/internal/events"
	"stayops/internal/messaging/service"
	apperrors "stayops/pkg/errors"
	"stayops/pkg/kafka"
	kafka_config "stayops/pkg/kafka/config"
	kafka_middleware "stayops/pkg/kafka/middleware"
	"stayops/pkg/logger"
	"stayops/pkg/model"
)

type guestVerifiedPayload struct {
	GuestID string `json:"guest_id"`
}

type reservationEventPayload struct {
	GuestID string `json:"guest_id"`
	Event   string `json:"event"`
}

type reservationCancelledPayload struct {
	ReservationID string `json:"reservation_id"`
}

// ReservationIntake consumes the booking platform's lifecycle topic and
// drives scheduling the same way the HTTP hooks do. Payload errors are
// permanent (straight to the DLQ); scheduler errors retry unless they are
// typed client failures.
type ReservationIntake struct {
	consumer  *kafka.Consumer
	scheduler service.MessageScheduler
	log       *logger.Logger
}

func NewReservationIntake(
	kafkaCfg *kafka_config.Config,
	topic, groupID, dlqTopic string,
	scheduler service.MessageScheduler,
	log *logger.Logger,
) (*ReservationIntake, error) {
	intake := &ReservationIntake{
		scheduler: scheduler,
		log:       log,
	}

	consumer, err := kafka.NewConsumer(kafkaCfg, topic, groupID, dlqTopic, intake.handle)
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation intake consumer: %w", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware())
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware())

	intake.consumer = consumer
	return intake, nil
}

func (i *ReservationIntake) Name() string {
	return "reservation-intake"
}

func (i *ReservationIntake) Start(ctx context.Context) error {
	return i.consumer.Start(ctx)
}

func (i *ReservationIntake) Stop() {
	if err := i.consumer.Close(); err != nil {
		i.log.Error("Failed to close reservation intake consumer", "error", err)
	}
}

func (i *ReservationIntake) handle(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()

	i.log.Info("Processing reservation lifecycle event",
		"event_type", eventType,
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
	)

	switch eventType {
	case events.GuestVerified:
		return i.handleGuestVerified(ctx, msg)
	case events.ReservationEvent:
		return i.handleReservationEvent(ctx, msg)
	case events.ReservationCancelled:
		return i.handleReservationCancelled(ctx, msg)
	default:
		// Other services share the topic; foreign events are not failures.
		i.log.Info("Ignoring unhandled event type", "event_type", eventType)
		return nil
	}
}

func (i *ReservationIntake) handleGuestVerified(ctx context.Context, msg kafka.Message) error {
	var payload guestVerifiedPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return kafka.NewPermanentError("invalid guest verified payload", err)
	}
	if payload.GuestID == "" {
		return kafka.NewPermanentError("guest verified payload missing guest_id", nil)
	}

	result, err := i.scheduler.ScheduleForGuest(ctx, payload.GuestID)
	if err != nil {
		return i.classify(err)
	}

	i.log.Info("Scheduled messages for verified guest",
		"guest_id", payload.GuestID,
		"scheduled", len(result.Scheduled),
		"skipped", result.Skipped,
	)
	return nil
}

func (i *ReservationIntake) handleReservationEvent(ctx context.Context, msg kafka.Message) error {
	var payload reservationEventPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return kafka.NewPermanentError("invalid reservation event payload", err)
	}
	if payload.GuestID == "" || payload.Event == "" {
		return kafka.NewPermanentError("reservation event payload missing guest_id or event", nil)
	}

	result, err := i.scheduler.ScheduleForEvent(ctx, payload.GuestID, model.TriggerEvent(payload.Event))
	if err != nil {
		return i.classify(err)
	}

	i.log.Info("Scheduled messages for reservation event",
		"guest_id", payload.GuestID,
		"event", payload.Event,
		"scheduled", len(result.Scheduled),
		"skipped", result.Skipped,
	)
	return nil
}

func (i *ReservationIntake) handleReservationCancelled(ctx context.Context, msg kafka.Message) error {
	var payload reservationCancelledPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return kafka.NewPermanentError("invalid reservation cancelled payload", err)
	}
	if payload.ReservationID == "" {
		return kafka.NewPermanentError("reservation cancelled payload missing reservation_id", nil)
	}

	count, err := i.scheduler.CancelForReservation(ctx, payload.ReservationID)
	if err != nil {
		return i.classify(err)
	}

	i.log.Info("Cancelled scheduled messages for reservation",
		"reservation_id", payload.ReservationID,
		"cancelled", count,
	)
	return nil
}

// classify maps scheduler errors onto the retry policy: bad references and
// validation failures will never succeed on replay, infrastructure errors
// might.
func (i *ReservationIntake) classify(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperrors.CodeNotFound, apperrors.CodeValidation, apperrors.CodeInvalidInput:
			return kafka.NewPermanentError(appErr.Message, err)
		}
	}
	return err
}
