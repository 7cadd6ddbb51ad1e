package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"stayops/pkg/client"
	"stayops/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	HookSigningSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	PasscodeLeadTime       time.Duration
	PasscodeValidityBuffer time.Duration

	SweepInterval       time.Duration
	SweepLookahead      time.Duration
	SweepFailureBackoff time.Duration

	LockVendorBaseURL string
	LockVendorAPIKey  string
	LockVendorTimeout time.Duration
	LockVendorRetries int

	SMSGatewayBaseURL string
	SMSGatewayAPIKey  string
	SMSGatewayTimeout time.Duration
	SMSSenderName     string

	ContractServiceURL string

	KafkaEnabled          bool
	KafkaEventsTopic      string
	KafkaReservationTopic string
	KafkaConsumerGroup    string
	KafkaDLQTopic         string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// Local development convenience; deployed environments set real env vars.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		HookSigningSecret: getEnvStr(EnvHookSigningSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		PasscodeLeadTime:       getEnvDuration(EnvPasscodeLeadTime, DefaultPasscodeLeadTime),
		PasscodeValidityBuffer: getEnvDuration(EnvPasscodeValidityBuffer, DefaultPasscodeValidityBuffer),

		SweepInterval:       getEnvDuration(EnvSweepInterval, DefaultSweepInterval),
		SweepLookahead:      getEnvDuration(EnvSweepLookahead, DefaultSweepLookahead),
		SweepFailureBackoff: getEnvDuration(EnvSweepFailureBackoff, DefaultSweepFailureBackoff),

		LockVendorBaseURL: getEnvStr(EnvLockVendorBaseURL, DefaultLockVendorBaseURL),
		LockVendorAPIKey:  getEnvStr(EnvLockVendorAPIKey, ""),
		LockVendorTimeout: getEnvDuration(EnvLockVendorTimeout, DefaultLockVendorTimeout),
		LockVendorRetries: getEnvNum(EnvLockVendorRetries, DefaultLockVendorRetries),

		SMSGatewayBaseURL: getEnvStr(EnvSMSGatewayBaseURL, DefaultSMSGatewayBaseURL),
		SMSGatewayAPIKey:  getEnvStr(EnvSMSGatewayAPIKey, ""),
		SMSGatewayTimeout: getEnvDuration(EnvSMSGatewayTimeout, DefaultSMSGatewayTimeout),
		SMSSenderName:     getEnvStr(EnvSMSSenderName, DefaultSMSSenderName),

		ContractServiceURL: getEnvStr(EnvContractServiceURL, DefaultContractServiceURL),

		KafkaEnabled:          getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		KafkaEventsTopic:      getEnvStr(EnvKafkaEventsTopic, DefaultKafkaEventsTopic),
		KafkaReservationTopic: getEnvStr(EnvKafkaReservationTopic, DefaultKafkaReservationTopic),
		KafkaConsumerGroup:    getEnvStr(EnvKafkaConsumerGroup, serviceName),
		KafkaDLQTopic:         getEnvStr(EnvKafkaDLQTopic, DefaultKafkaDLQTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.PasscodeLeadTime <= 0 {
		errors = append(errors, fmt.Sprintf("PasscodeLeadTime must be positive, got: %s", cfg.PasscodeLeadTime))
	}
	if cfg.PasscodeValidityBuffer <= 0 {
		errors = append(errors, fmt.Sprintf("PasscodeValidityBuffer must be positive, got: %s", cfg.PasscodeValidityBuffer))
	}

	if cfg.SweepInterval <= 0 {
		errors = append(errors, fmt.Sprintf("SweepInterval must be positive, got: %s", cfg.SweepInterval))
	}
	if cfg.SweepLookahead <= 0 {
		errors = append(errors, fmt.Sprintf("SweepLookahead must be positive, got: %s", cfg.SweepLookahead))
	}
	if cfg.SweepFailureBackoff <= 0 {
		errors = append(errors, fmt.Sprintf("SweepFailureBackoff must be positive, got: %s", cfg.SweepFailureBackoff))
	}

	urlRegex := regexp.MustCompile(`^https?://`)
	if !urlRegex.MatchString(cfg.LockVendorBaseURL) {
		errors = append(errors, fmt.Sprintf("LockVendorBaseURL must start with http:// or https://, got: %s", cfg.LockVendorBaseURL))
	}
	if cfg.LockVendorTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("LockVendorTimeout must be positive, got: %s", cfg.LockVendorTimeout))
	}
	if cfg.LockVendorRetries < 0 {
		errors = append(errors, fmt.Sprintf("LockVendorRetries cannot be negative, got: %d", cfg.LockVendorRetries))
	}
	if !urlRegex.MatchString(cfg.SMSGatewayBaseURL) {
		errors = append(errors, fmt.Sprintf("SMSGatewayBaseURL must start with http:// or https://, got: %s", cfg.SMSGatewayBaseURL))
	}
	if cfg.SMSGatewayTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("SMSGatewayTimeout must be positive, got: %s", cfg.SMSGatewayTimeout))
	}
	if !urlRegex.MatchString(cfg.ContractServiceURL) {
		errors = append(errors, fmt.Sprintf("ContractServiceURL must start with http:// or https://, got: %s", cfg.ContractServiceURL))
	}

	if cfg.KafkaEnabled {
		if cfg.KafkaEventsTopic == "" {
			errors = append(errors, "KafkaEventsTopic cannot be empty when Kafka is enabled")
		}
		if cfg.KafkaReservationTopic == "" {
			errors = append(errors, "KafkaReservationTopic cannot be empty when Kafka is enabled")
		}
		if cfg.KafkaConsumerGroup == "" {
			errors = append(errors, "KafkaConsumerGroup cannot be empty when Kafka is enabled")
		}
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"hook_signing_secret_set", cfg.HookSigningSecret != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"passcode_lead_time", cfg.PasscodeLeadTime,
		"passcode_validity_buffer", cfg.PasscodeValidityBuffer,
		"sweep_interval", cfg.SweepInterval,
		"sweep_lookahead", cfg.SweepLookahead,
		"sweep_failure_backoff", cfg.SweepFailureBackoff,
		"lock_vendor_base_url", cfg.LockVendorBaseURL,
		"lock_vendor_api_key_set", cfg.LockVendorAPIKey != "",
		"lock_vendor_timeout", cfg.LockVendorTimeout,
		"lock_vendor_retries", cfg.LockVendorRetries,
		"sms_gateway_base_url", cfg.SMSGatewayBaseURL,
		"sms_gateway_api_key_set", cfg.SMSGatewayAPIKey != "",
		"sms_gateway_timeout", cfg.SMSGatewayTimeout,
		"sms_sender_name", cfg.SMSSenderName,
		"contract_service_url", cfg.ContractServiceURL,
		"kafka_enabled", cfg.KafkaEnabled,
		"kafka_events_topic", cfg.KafkaEventsTopic,
		"kafka_reservation_topic", cfg.KafkaReservationTopic,
		"kafka_consumer_group", cfg.KafkaConsumerGroup,
		"kafka_dlq_topic", cfg.KafkaDLQTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = DefaultPaginationFallback
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
