package main

import (
	"stayops/internal/events"
	messagingconsumer "stayops/internal/messaging/consumer"
	messaginghandler "stayops/internal/messaging/handler"
	messagingrepo "stayops/internal/messaging/repository"
	messagingservice "stayops/internal/messaging/service"
	messagingvalidator "stayops/internal/messaging/validator"
	passcoderepo "stayops/internal/passcodes/repository"
	passcodeservice "stayops/internal/passcodes/service"
	reservationsrepo "stayops/internal/reservations/repository"
	"stayops/pkg/app"
	"stayops/pkg/client"
	"stayops/pkg/clock"
	"stayops/pkg/config"
	kafka_config "stayops/pkg/kafka/config"
)

const ServiceName = "messages"

func main() {
	cfg := config.Load(ServiceName)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	// Log all configuration values
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Messages service")
	cfg.SetMongo()

	publisher := initPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	scheduler, resolver := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(messaginghandler.NewMessagingHandler(
		scheduler,
		resolver,
		messagingvalidator.NewMessagingValidator(cfg.Log),
		cfg.Log,
	))

	if cfg.KafkaEnabled {
		intake, err := messagingconsumer.NewReservationIntake(
			kafka_config.Load(),
			cfg.KafkaReservationTopic,
			cfg.KafkaConsumerGroup,
			cfg.KafkaDLQTopic,
			scheduler,
			cfg.Log,
		)
		if err != nil {
			cfg.Log.Fatal("Failed to create reservation intake consumer", "error", err)
		}
		serverApp.RegisterWorker(intake)
		cfg.Log.Info("Reservation intake consumer registered", "topic", cfg.KafkaReservationTopic)
	}

	serverApp.Run()
}

func initServices(cfg *config.Config, publisher events.Publisher) (messagingservice.MessageScheduler, messagingservice.VariableResolver) {
	templateRepo := messagingrepo.NewMongoTemplateRepository(cfg)
	scheduledRepo := messagingrepo.NewMongoScheduledMessageRepository(cfg)
	guestRepo := reservationsrepo.NewMongoGuestRepository(cfg)
	reservationRepo := reservationsrepo.NewMongoReservationRepository(cfg)
	propertyRepo := reservationsrepo.NewMongoPropertyRepository(cfg)
	passcodeRepo := passcoderepo.NewMongoPasscodeRepository(cfg)

	contracts := client.NewContractClient(cfg.ContractServiceURL)

	scheduler := messagingservice.NewMessageScheduler(
		templateRepo,
		scheduledRepo,
		guestRepo,
		reservationRepo,
		contracts,
		publisher,
		clock.Real(),
		cfg,
	)

	accessor := passcodeservice.NewPasscodeAccessor(passcodeRepo, propertyRepo, cfg)
	resolver := messagingservice.NewVariableResolver(reservationRepo, propertyRepo, accessor, cfg)

	cfg.Log.Info("Message scheduler initialized", "database", cfg.MongoDatabaseName)
	return scheduler, resolver
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, domain events will not be published")
		return events.NewNop()
	}

	publisher, err := events.NewKafkaPublisher(kafka_config.Load(), cfg.KafkaEventsTopic, cfg.KafkaDLQTopic, ServiceName, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka publisher", "error", err)
	}

	cfg.Log.Info("Kafka publisher initialized", "topic", cfg.KafkaEventsTopic)
	return publisher
}
