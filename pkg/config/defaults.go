package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "stayops"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Passcodes become eligible this long before check-in and stay valid
	// this long around the stay boundaries.
	DefaultPasscodeLeadTime       = 3 * time.Hour
	DefaultPasscodeValidityBuffer = 1 * time.Hour

	DefaultSweepInterval       = 5 * time.Minute
	DefaultSweepLookahead      = 4 * time.Hour
	DefaultSweepFailureBackoff = 30 * time.Second

	DefaultLockVendorBaseURL = "http://localhost:9010"
	DefaultLockVendorTimeout = 10 * time.Second
	DefaultLockVendorRetries = 2

	DefaultSMSGatewayBaseURL = "http://localhost:9020"
	DefaultSMSGatewayTimeout = 10 * time.Second
	DefaultSMSSenderName     = "StayOps"

	DefaultContractServiceURL = "http://localhost:9030"

	DefaultKafkaEnabled          = false
	DefaultKafkaEventsTopic      = "stayops.events"
	DefaultKafkaReservationTopic = "reservations.lifecycle"
	DefaultKafkaDLQTopic         = "stayops.events.dlq"

	DefaultPaginationLimit    = 100
	DefaultPaginationFallback = 10
)
