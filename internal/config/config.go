package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const minJWTSecretLength = 32

// Auth provider names accepted in AUTH_PROVIDER
const (
	AuthProviderRedis  = "redis"
	AuthProviderTwilio = "twilio"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port        int    `json:"port"`
	Environment string `json:"environment"`

	// Redis configuration
	RedisURI      string `json:"redis_uri"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	// MongoDB configuration (audit trail)
	MongoURI            string `json:"mongo_uri"`
	MongoDatabase       string `json:"mongo_database"`
	AuditLogsCollection string `json:"mongo_audit_logs_collection"`
	AuditLogsEnabled    bool   `json:"audit_logs_enabled"`

	// Postgres configuration (coupon ledger)
	PostgresDSN string `json:"-"`

	// Auth provider configuration
	AuthProvider           string `json:"auth_provider"`
	TwilioAccountSID       string `json:"-"`
	TwilioAuthToken        string `json:"-"`
	TwilioFrom             string `json:"twilio_from"`
	TwilioVerifyServiceSID string `json:"-"`

	// OTP configuration
	OTPTTL               time.Duration `json:"otp_ttl"`
	OTPCooldown          time.Duration `json:"otp_cooldown"`
	OTPMaxAttempts       int           `json:"otp_max_attempts"`
	OTPCountdown         time.Duration `json:"otp_countdown"`
	SessionIdleTimeout   time.Duration `json:"session_idle_timeout"`
	SendCodeRatePerMin   int           `json:"send_code_rate_per_minute"`
	RegistrationTokenTTL time.Duration `json:"registration_token_ttl"`

	// Access token configuration
	JWTSecret      string        `json:"-"`
	AccessTokenTTL time.Duration `json:"access_token_ttl"`

	// Coupon configuration
	MaxTransferCents int64 `json:"max_transfer_cents"`

	// Tracing configuration
	TracingEnabled  bool   `json:"tracing_enabled"`
	TracingEndpoint string `json:"tracing_endpoint"`
}

// LoadConfig loads configuration from the environment, reading a .env file first when present
func LoadConfig() (*Config, error) {
	// A missing .env file is not an error; the process environment wins anyway
	_ = godotenv.Load()

	port, err := getEnvAsIntOrDefault("PORT", 8080)
	if err != nil {
		return nil, err
	}

	redisDB, err := getEnvAsIntOrDefault("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	otpTTL, err := getEnvAsDurationOrDefault("OTP_TTL", "5m")
	if err != nil {
		return nil, err
	}

	otpCooldown, err := getEnvAsDurationOrDefault("OTP_COOLDOWN", "60s")
	if err != nil {
		return nil, err
	}

	otpCountdown, err := getEnvAsDurationOrDefault("OTP_COUNTDOWN", "60s")
	if err != nil {
		return nil, err
	}
	if otpCountdown < 0 {
		return nil, fmt.Errorf("invalid OTP_COUNTDOWN: must not be negative")
	}

	otpMaxAttempts, err := getEnvAsIntOrDefault("OTP_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}

	idleTimeout, err := getEnvAsDurationOrDefault("SESSION_IDLE_TIMEOUT", "15m")
	if err != nil {
		return nil, err
	}

	sendRate, err := getEnvAsIntOrDefault("SEND_CODE_RATE_PER_MINUTE", 30)
	if err != nil {
		return nil, err
	}
	if sendRate <= 0 {
		return nil, fmt.Errorf("invalid SEND_CODE_RATE_PER_MINUTE: must be positive")
	}

	regTokenTTL, err := getEnvAsDurationOrDefault("REGISTRATION_TOKEN_TTL", "15m")
	if err != nil {
		return nil, err
	}

	accessTTL, err := getEnvAsDurationOrDefault("ACCESS_TOKEN_TTL", "24h")
	if err != nil {
		return nil, err
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL: must be positive")
	}

	maxTransfer, err := strconv.ParseInt(getEnvOrDefault("MAX_TRANSFER_CENTS", "100000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_TRANSFER_CENTS: %w", err)
	}

	authProvider := getEnvOrDefault("AUTH_PROVIDER", AuthProviderRedis)
	if authProvider != AuthProviderRedis && authProvider != AuthProviderTwilio {
		return nil, fmt.Errorf("invalid AUTH_PROVIDER: %q", authProvider)
	}

	cfg := &Config{
		// Server configuration
		Port:        port,
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		// Redis configuration
		RedisURI:      getEnvOrDefault("REDIS_URI", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		// MongoDB configuration
		MongoURI:            getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:       getEnvOrDefault("MONGODB_DATABASE", "wallet"),
		AuditLogsCollection: getEnvOrDefault("MONGODB_AUDIT_COLLECTION", "audit_logs"),
		AuditLogsEnabled:    getEnvAsBoolOrDefault("AUDIT_LOGS_ENABLED", true),

		// Postgres configuration
		PostgresDSN: getEnvOrDefault("POSTGRES_DSN", "postgres://localhost:5432/wallet?sslmode=disable"),

		// Auth provider configuration
		AuthProvider:           authProvider,
		TwilioAccountSID:       os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:        os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:             os.Getenv("TWILIO_FROM"),
		TwilioVerifyServiceSID: os.Getenv("TWILIO_VERIFY_SERVICE_SID"),

		// OTP configuration
		OTPTTL:               otpTTL,
		OTPCooldown:          otpCooldown,
		OTPMaxAttempts:       otpMaxAttempts,
		OTPCountdown:         otpCountdown,
		SessionIdleTimeout:   idleTimeout,
		SendCodeRatePerMin:   sendRate,
		RegistrationTokenTTL: regTokenTTL,

		// Access token configuration
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: accessTTL,

		// Coupon configuration
		MaxTransferCents: maxTransfer,

		// Tracing configuration
		TracingEnabled:  getEnvAsBoolOrDefault("TRACING_ENABLED", false),
		TracingEndpoint: getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
	}

	if cfg.AuthProvider == AuthProviderTwilio && (cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioVerifyServiceSID == "") {
		return nil, fmt.Errorf("AUTH_PROVIDER=twilio requires TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_VERIFY_SERVICE_SID")
	}

	if cfg.AuthProvider == AuthProviderRedis && cfg.OTPCooldown > cfg.OTPCountdown {
		// the resend button would open before the gateway accepts a new send
		return nil, fmt.Errorf("invalid OTP_COOLDOWN: %s is longer than OTP_COUNTDOWN %s", cfg.OTPCooldown, cfg.OTPCountdown)
	}

	if cfg.IsProduction() {
		if cfg.AuthProvider == AuthProviderRedis && !cfg.HasSMSSender() {
			return nil, fmt.Errorf("production requires TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM to deliver codes")
		}
		if len(cfg.JWTSecret) < minJWTSecretLength {
			return nil, fmt.Errorf("production requires JWT_SECRET of at least %d bytes", minJWTSecretLength)
		}
	}

	return cfg, nil
}

// IsProduction reports whether ENVIRONMENT is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasSMSSender reports whether Twilio can send plain SMS
func (c *Config) HasSMSSender() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFrom != ""
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvAsDurationOrDefault(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnvOrDefault(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return v
}
