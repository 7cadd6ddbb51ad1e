package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvHookSigningSecret = "HOOK_SIGNING_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvPasscodeLeadTime       = "PASSCODE_LEAD_TIME"
	EnvPasscodeValidityBuffer = "PASSCODE_VALIDITY_BUFFER"

	EnvSweepInterval       = "SWEEP_INTERVAL"
	EnvSweepLookahead      = "SWEEP_LOOKAHEAD"
	EnvSweepFailureBackoff = "SWEEP_FAILURE_BACKOFF"

	EnvLockVendorBaseURL = "LOCK_VENDOR_BASE_URL"
	EnvLockVendorAPIKey  = "LOCK_VENDOR_API_KEY"
	EnvLockVendorTimeout = "LOCK_VENDOR_TIMEOUT"
	EnvLockVendorRetries = "LOCK_VENDOR_RETRIES"

	EnvSMSGatewayBaseURL = "SMS_GATEWAY_BASE_URL"
	EnvSMSGatewayAPIKey  = "SMS_GATEWAY_API_KEY"
	EnvSMSGatewayTimeout = "SMS_GATEWAY_TIMEOUT"
	EnvSMSSenderName     = "SMS_SENDER_NAME"

	EnvContractServiceURL = "CONTRACT_SERVICE_URL"

	EnvKafkaEnabled          = "KAFKA_ENABLED"
	EnvKafkaEventsTopic      = "KAFKA_EVENTS_TOPIC"
	EnvKafkaReservationTopic = "KAFKA_RESERVATION_TOPIC"
	EnvKafkaConsumerGroup    = "KAFKA_CONSUMER_GROUP"
	EnvKafkaDLQTopic         = "KAFKA_DLQ_TOPIC"
)
