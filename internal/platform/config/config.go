// Package config builds runtime configuration from the environment so main
// stays lean. A .env file in the working directory is honored when present,
// real environment variables win.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	stringutil "carelink/pkg/platform/strings"
)

// Config captures everything the server needs at startup.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration

	// PostgresURL selects the durable store; when empty the server runs on
	// in-memory stores (dev and test mode).
	PostgresURL string

	// RedisURL enables the remembered-token membership index; optional.
	RedisURL string

	// KafkaBrokers enables the audit event publisher; optional.
	KafkaBrokers []string
	KafkaTopic   string

	// AccessTokenSecret signs the short-lived credential, RememberedTokenSecret
	// the long-lived one. Two independent keys: compromise of one credential
	// type must not forge the other.
	AccessTokenSecret     string
	RememberedTokenSecret string
	AccessTokenTTL        time.Duration
	RememberedTokenTTL    time.Duration

	// RememberedDeviceCap bounds the remembered-token set per account;
	// the oldest entry is evicted on overflow.
	RememberedDeviceCap int
}

// FromEnv loads configuration from the environment, with development-safe
// defaults for everything except the signing secrets in production.
func FromEnv() Config {
	// Missing .env is fine; explicit env vars are the primary mechanism.
	_ = godotenv.Load()

	return Config{
		Addr:                  getenv("CARELINK_ADDR", ":8080"),
		ShutdownTimeout:       getdur("CARELINK_SHUTDOWN_TIMEOUT", 10*time.Second),
		PostgresURL:           os.Getenv("CARELINK_POSTGRES_URL"),
		RedisURL:              os.Getenv("CARELINK_REDIS_URL"),
		KafkaBrokers:          stringutil.DedupeAndTrim(strings.Split(os.Getenv("CARELINK_KAFKA_BROKERS"), ",")),
		KafkaTopic:            getenv("CARELINK_KAFKA_TOPIC", "carelink.audit"),
		AccessTokenSecret:     getenv("CARELINK_ACCESS_SECRET", "dev-access-secret-change-in-production"),
		RememberedTokenSecret: getenv("CARELINK_REMEMBERED_SECRET", "dev-remembered-secret-change-in-production"),
		AccessTokenTTL:        getdur("CARELINK_ACCESS_TTL", time.Hour),
		RememberedTokenTTL:    getdur("CARELINK_REMEMBERED_TTL", 365*24*time.Hour),
		RememberedDeviceCap:   getint("CARELINK_REMEMBERED_DEVICE_CAP", 5),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getdur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
