// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field maps to
// one environment variable; required variables are enforced by must()
// and missing values stop the program at startup.
type Config struct {
	Env          string // application environment (dev, test, prod)
	Port         string // HTTP port to listen on
	DBHost       string // Postgres host
	DBPort       string // Postgres port
	DBUser       string // Postgres user
	DBPass       string // Postgres password (optional)
	DBName       string // database name
	DBSSLMode    string // sslmode parameter, default "disable"
	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
	RabbitURL    string // AMQP broker URL; empty disables events

	CacheEnabled bool          // cache GET responses in Redis
	CacheTTL     time.Duration // cache entry lifetime
	RateLimit    int           // requests allowed per window per client, 0 disables
	RateWindow   time.Duration // rate limit window
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Env:          getenv("APP_ENV", "dev"),
		Port:         getenv("APP_PORT", "8080"),
		DBHost:       must("DB_HOST"),
		DBPort:       getenv("DB_PORT", "5432"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"),
		DBName:       must("DB_NAME"),
		DBSSLMode:    getenv("DB_SSLMODE", "disable"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: getenvInt("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:   getenvInt("BCRYPT_COST", 12),
		RabbitURL:    os.Getenv("RABBITMQ_URL"),
		CacheEnabled: getenv("CACHE_ENABLED", "true") == "true",
		CacheTTL:     getenvDur("CACHE_TTL", 30*time.Second),
		RateLimit:    getenvInt("RATE_LIMIT", 60),
		RateWindow:   getenvDur("RATE_LIMIT_WINDOW", time.Minute),
	}
}

func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

func getenvDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}
