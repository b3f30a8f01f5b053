package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"partnerledger/database"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP adapter configuration
	HTTPAddr           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string // Empty allows any origin

	// Ledger configuration
	Timezone              string         // IANA name of the zone used for day bucketing
	Location              *time.Location // Parsed Timezone
	TransactionsPageLimit int            // Default page size for transaction listings

	// Balance cache configuration (disabled when RedisURL is empty)
	RedisURL        string
	BalanceCacheTTL time.Duration

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables, reading a .env file first when one exists
func load() (*Config, error) {
	// A missing .env file is not an error; the environment is authoritative
	_ = godotenv.Load()

	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// HTTP defaults
		HTTPAddr:        ":8080",
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		// Ledger defaults
		Timezone:              "UTC",
		TransactionsPageLimit: 100,

		// Cache
		RedisURL:        os.Getenv("REDIS_URL"),
		BalanceCacheTTL: 30 * time.Second,

		LogLevel:    os.Getenv("LOG_LEVEL"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		config.HTTPAddr = addr
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				config.CORSAllowedOrigins = append(config.CORSAllowedOrigins, origin)
			}
		}
	}
	if tz := os.Getenv("LEDGER_TIMEZONE"); tz != "" {
		config.Timezone = tz
	}
	if timeout := os.Getenv("REQUEST_TIMEOUT"); timeout != "" {
		if parsed, err := time.ParseDuration(timeout); err == nil {
			config.RequestTimeout = parsed
		}
	}
	if timeout := os.Getenv("SHUTDOWN_TIMEOUT"); timeout != "" {
		if parsed, err := time.ParseDuration(timeout); err == nil {
			config.ShutdownTimeout = parsed
		}
	}
	if ttl := os.Getenv("BALANCE_CACHE_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			config.BalanceCacheTTL = parsed
		}
	}
	if limit := os.Getenv("TRANSACTIONS_PAGE_LIMIT"); limit != "" {
		if parsed, err := strconv.Atoi(limit); err == nil && parsed > 0 {
			config.TransactionsPageLimit = parsed
		}
	}

	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_TIMEZONE %q: %w", config.Timezone, err)
	}
	config.Location = loc

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}
