package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)

	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	StoreDriver   string // Store driver (redis, memory) (default: redis)
	RedisAddr     string // Redis address (default: localhost:6379)
	RedisPassword string // Optional: redis password
	RedisDB       int    // Redis logical database (default: 0)

	AzureClientID     string // Required: Microsoft application (client) ID
	AzureClientSecret string // Required: Microsoft client secret
	PublicBaseURL     string // Base URL this service is reachable at, used for the OAuth redirect URI
	FrontendBaseURL   string // Frontend base URL the callback redirects back to

	LinkCodeTTL  time.Duration // Optional: validity window of linking codes (default: 10m)
	VoteCooldown time.Duration // Optional: per-voter per-server cooldown (default: 24h)

	JWTIssuer        string // Expected issuer claim on web-session tokens
	JWTPublicKeyFile string // Path to the PEM-encoded Ed25519 public key of the web auth service
}

func LoadConfig() Config {
	return Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		StoreDriver:   getEnvOrDefault("STORE_DRIVER", "redis"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		AzureClientID:     os.Getenv("AZURE_CLIENT_ID"),
		AzureClientSecret: os.Getenv("AZURE_CLIENT_SECRET"),
		PublicBaseURL:     getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"),
		FrontendBaseURL:   getEnvOrDefault("FRONTEND_BASE_URL", "http://localhost:3000"),

		LinkCodeTTL:  getEnvDurationOrDefault("LINK_CODE_TTL", 10*time.Minute),
		VoteCooldown: getEnvDurationOrDefault("VOTE_COOLDOWN", 24*time.Hour),

		JWTIssuer:        getEnvOrDefault("JWT_ISSUER", "craftboard-web"),
		JWTPublicKeyFile: os.Getenv("JWT_PUBLIC_KEY_FILE"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
