package config

import (
	"os"
	"strconv"
	"time"
)

const (
	ServiceName    = "content-gateway"
	ServiceVersion = "1.0.0"
)

type Config struct {
	ListenAddr string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	CacheTTLSeconds    int
	StaleWindowSeconds int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SinkKind string
	SinkURL  string

	RateLimit        int
	RateLimitWindow  time.Duration
	CoalesceRequests bool

	LogLevel string
	LogJSON  bool

	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDatabase string
	PostgresSSLMode  string
}

func Load() *Config {
	cfg := &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		S3Bucket:           mustGetEnv("S3_BUCKET"),
		S3Region:           getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3AccessKey:        mustGetEnv("AWS_ACCESS_KEY_ID"),
		S3SecretKey:        mustGetEnv("AWS_SECRET_ACCESS_KEY"),
		CacheTTLSeconds:    getEnvInt("CACHE_TTL_SECONDS", 800),
		StaleWindowSeconds: getEnvInt("STALE_WINDOW_SECONDS", 0),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		SinkKind:           getEnv("TELEMETRY_SINK", "http"),
		SinkURL:            getEnv("TELEMETRY_SINK_URL", ""),
		RateLimit:          getEnvInt("RATE_LIMIT", 100),
		RateLimitWindow:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		CoalesceRequests:   getEnvBool("COALESCE_REQUESTS", false),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogJSON:            getEnvBool("LOG_JSON", true),
		PostgresUser:       getEnv("POSTGRES_USER", "gateway"),
		PostgresPassword:   getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:       getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:       getEnv("POSTGRES_PORT", "5432"),
		PostgresDatabase:   getEnv("POSTGRES_DATABASE", "content_gateway"),
		PostgresSSLMode:    getEnv("POSTGRES_SSL_MODE", "disable"),
	}

	if cfg.SinkKind == "http" && cfg.SinkURL == "" {
		panic("TELEMETRY_SINK_URL must be provided for the http sink")
	}

	return cfg
}

func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic("Missing required environment variable: " + key)
	}
	return value
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
