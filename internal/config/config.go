package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Logging
	LogLevel  string
	LogFormat string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlite-pure, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBLogLevel        string
	SeedCatalog       bool

	// Authorizer configuration
	AuthzURL        string
	AuthzClientID   string
	AuthzCookieName string

	// Language model configuration
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	// Outbound HTTP, extraction cache and limits
	HTTPClientTimeout time.Duration
	RedisURL          string
	ExtractCacheTTL   time.Duration
	ExtractRateLimit  int

	// Timezone used for "today" in expiry and monthly computations
	Timezone string
}

// Load loads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DB_TYPE", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_DATABASE", "")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_CONNECTION_LIMIT", 10)
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("SEED_CATALOG", true)
	v.SetDefault("AUTHZ_URL", "")
	v.SetDefault("AUTHZ_CLIENT_ID", "")
	v.SetDefault("AUTHZ_COOKIE_NAME", "cookie_session")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("HTTP_CLIENT_TIMEOUT", "60s")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("EXTRACT_CACHE_TTL", "24h")
	v.SetDefault("EXTRACT_RATE_LIMIT", 10)
	v.SetDefault("TIMEZONE", "Asia/Seoul")

	return v
}

// FromViper builds and validates a Config from a populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:              v.GetString("PORT"),
		Environment:       v.GetString("APP_ENV"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		DBType:            v.GetString("DB_TYPE"),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBDatabase:        v.GetString("DB_DATABASE"),
		DBUser:            v.GetString("DB_USER"),
		DBPassword:        v.GetString("DB_PASSWORD"),
		DBConnectionLimit: v.GetInt("DB_CONNECTION_LIMIT"),
		DBLogLevel:        v.GetString("DB_LOG_LEVEL"),
		SeedCatalog:       v.GetBool("SEED_CATALOG"),
		AuthzURL:          v.GetString("AUTHZ_URL"),
		AuthzClientID:     v.GetString("AUTHZ_CLIENT_ID"),
		AuthzCookieName:   v.GetString("AUTHZ_COOKIE_NAME"),
		LLMAPIKey:         v.GetString("LLM_API_KEY"),
		LLMBaseURL:        v.GetString("LLM_BASE_URL"),
		LLMModel:          v.GetString("LLM_MODEL"),
		HTTPClientTimeout: v.GetDuration("HTTP_CLIENT_TIMEOUT"),
		RedisURL:          v.GetString("REDIS_URL"),
		ExtractCacheTTL:   v.GetDuration("EXTRACT_CACHE_TTL"),
		ExtractRateLimit:  v.GetInt("EXTRACT_RATE_LIMIT"),
		Timezone:          v.GetString("TIMEZONE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if c.AuthzURL == "" {
		return fmt.Errorf("AUTHZ_URL is required")
	}
	if c.AuthzClientID == "" {
		return fmt.Errorf("AUTHZ_CLIENT_ID is required")
	}
	if c.DBConnectionLimit < 1 {
		return fmt.Errorf("DB_CONNECTION_LIMIT must be positive")
	}
	if c.ExtractRateLimit < 1 {
		return fmt.Errorf("EXTRACT_RATE_LIMIT must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LLMConfigured reports whether a language-model credential is present
func (c *Config) LLMConfigured() bool {
	return c.LLMAPIKey != ""
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
