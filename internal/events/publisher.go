package events

import (
	"context"

	"stayops/pkg/kafka"
	kafka_config "stayops/pkg/kafka/config"
	kafka_middleware "stayops/pkg/kafka/middleware"
	"stayops/pkg/logger"

	"github.com/google/uuid"
)

// Domain event types published on the automation events topic.
const (
	PasscodeManualRequested  = "passcode.manual_requested"
	PasscodeReady            = "passcode.ready"
	PasscodeGenerationFailed = "passcode.generation_failed"
	PasscodeExpired          = "passcode.expired"
	PasscodeRevoked          = "passcode.revoked"
	MessagesScheduled        = "messages.scheduled"
	MessagesCancelled        = "messages.cancelled"
)

// Event types consumed from the reservation lifecycle topic.
const (
	GuestVerified        = "guest.verified"
	ReservationEvent     = "reservation.event"
	ReservationCancelled = "reservation.cancelled"
)

// Publisher emits domain events. Publishing is observability plumbing:
// callers log failures and move on, never fail the triggering operation.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

// NewKafkaPublisher wires the shared producer onto the events topic.
func NewKafkaPublisher(cfg *kafka_config.Config, topic, dlqTopic, source string, log *logger.Logger) (Publisher, error) {
	producer, err := kafka.NewProducer(cfg, topic, dlqTopic)
	if err != nil {
		return nil, err
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware())
	producer.Use(kafka_middleware.MetricsProducerMiddleware())

	return &kafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	if key == "" {
		key = uuid.New().String()
	}

	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithEventID("").
		WithSource(p.source).
		Build()

	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// Nop is the publisher used when Kafka is disabled.
type Nop struct{}

func NewNop() Publisher {
	return Nop{}
}

func (Nop) Publish(ctx context.Context, eventType, key string, payload any) error {
	return nil
}

func (Nop) Close() error {
	return nil
}
