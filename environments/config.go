package environments

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Snowflake SnowflakeConfig
	Stripe    StripeConfig
	Twilio    TwilioConfig
	Redis     RedisConfig
	Signature SignatureConfig
	Device    DeviceConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Port string
}

// SnowflakeConfig holds the warehouse connection settings. Authentication is
// key-pair based: PrivateKeyPath points at a PKCS#8 PEM file, optionally
// encrypted with PrivateKeyPassphrase.
type SnowflakeConfig struct {
	User                 string
	Account              string
	Warehouse            string
	Role                 string
	Database             string
	Schema               string
	PrivateKeyPath       string
	PrivateKeyPassphrase string
}

type StripeConfig struct {
	SecretKey          string
	WebhookSecret      string
	TerminalLocationID string
}

type TwilioConfig struct {
	AccountSID          string
	AuthToken           string
	MessagingServiceSID string
	FromNumber          string
	Timeout             time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SignatureConfig names the internal stage that stores signature images and
// how long presigned retrieval URLs stay valid.
type SignatureConfig struct {
	StageName     string
	PresignExpiry time.Duration
}

type DeviceConfig struct {
	DeviceID string
}

type AuthConfig struct {
	AppAPIKey string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: GetEnv("SERVER_PORT", "8080"),
		},
		Snowflake: SnowflakeConfig{
			User:                 GetEnv("SNOW_USER", ""),
			Account:              GetEnv("SNOW_ACCOUNT", ""),
			Warehouse:            GetEnv("SNOW_WAREHOUSE", "APP_WH"),
			Role:                 GetEnv("SNOW_ROLE", "APP_WRITER"),
			Database:             GetEnv("SNOW_DATABASE", "PHOENIX_APP_DEV"),
			Schema:               GetEnv("SNOW_SCHEMA", "CORE"),
			PrivateKeyPath:       GetEnv("SNOW_PRIVATE_KEY_PATH", ""),
			PrivateKeyPassphrase: GetEnv("SNOW_PRIVATE_KEY_PASSPHRASE", ""),
		},
		Stripe: StripeConfig{
			SecretKey:          GetEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:      GetEnv("STRIPE_WEBHOOK_SECRET", ""),
			TerminalLocationID: GetEnv("STRIPE_TERMINAL_LOCATION_ID", ""),
		},
		Twilio: TwilioConfig{
			AccountSID:          GetEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:           GetEnv("TWILIO_AUTH_TOKEN", ""),
			MessagingServiceSID: GetEnv("TWILIO_MESSAGING_SERVICE_SID", ""),
			FromNumber:          GetEnv("TWILIO_FROM_NUMBER", ""),
			Timeout:             time.Duration(GetEnvAsInt("TWILIO_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		Signature: SignatureConfig{
			StageName:     GetEnv("SIGNATURE_STAGE_NAME", "PHOENIX_APP_DEV.CORE.ASSETS_INT"),
			PresignExpiry: GetEnvAsDuration("SIGNATURE_PRESIGN_EXPIRY", time.Hour),
		},
		Device: DeviceConfig{
			DeviceID: GetEnv("APP_DEVICE_ID", ""),
		},
		Auth: AuthConfig{
			AppAPIKey: GetEnv("APP_API_KEY", ""),
		},
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
