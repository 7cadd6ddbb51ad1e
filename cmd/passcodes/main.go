package main

import (
	"stayops/internal/events"
	"stayops/internal/lockvendor"
	"stayops/internal/notify"
	passcodehandler "stayops/internal/passcodes/handler"
	passcoderepo "stayops/internal/passcodes/repository"
	passcodeservice "stayops/internal/passcodes/service"
	passcodevalidator "stayops/internal/passcodes/validator"
	reservationsrepo "stayops/internal/reservations/repository"
	"stayops/internal/sms"
	"stayops/internal/sweeper"
	"stayops/pkg/app"
	"stayops/pkg/clock"
	"stayops/pkg/config"
	kafka_config "stayops/pkg/kafka/config"
)

const ServiceName = "passcodes"

func main() {
	cfg := config.Load(ServiceName)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	// Log all configuration values
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Passcodes service")
	cfg.SetMongo()

	clk := clock.Real()
	publisher := initPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	lifecycle, reservationRepo := initServices(cfg, clk, publisher)

	sweep := sweeper.New(reservationRepo, lifecycle, clk, cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(passcodehandler.NewPasscodeHandler(
		lifecycle,
		passcodevalidator.NewPasscodeValidator(cfg.Log),
		sweep,
		cfg.Log,
	))
	serverApp.RegisterWorker(sweep)
	serverApp.Run()
}

func initServices(cfg *config.Config, clk clock.Clock, publisher events.Publisher) (passcodeservice.PasscodeLifecycle, reservationsrepo.ReservationRepository) {
	passcodeRepo := passcoderepo.NewMongoPasscodeRepository(cfg)
	reservationRepo := reservationsrepo.NewMongoReservationRepository(cfg)
	propertyRepo := reservationsrepo.NewMongoPropertyRepository(cfg)

	vendor := lockvendor.NewClient(cfg)
	gateway := sms.NewClient(cfg)
	dispatcher := notify.NewDispatcher(gateway, passcodeRepo, clk, cfg)

	lifecycle := passcodeservice.NewPasscodeLifecycle(
		passcodeRepo,
		reservationRepo,
		propertyRepo,
		vendor,
		dispatcher,
		publisher,
		cfg,
	)

	cfg.Log.Info("Passcode lifecycle initialized", "database", cfg.MongoDatabaseName)
	return lifecycle, reservationRepo
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, domain events will not be published")
		return events.NewNop()
	}

	kafkaCfg := kafka_config.Load()
	publisher, err := events.NewKafkaPublisher(kafkaCfg, cfg.KafkaEventsTopic, cfg.KafkaDLQTopic, ServiceName, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka publisher", "error", err)
	}

	cfg.Log.Info("Kafka publisher initialized", "topic", cfg.KafkaEventsTopic)
	return publisher
}
