package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the Atlas client
type Config struct {
	BaseURL             string // Backend base URL, e.g. https://atlas.example.com
	CookieFile          string // Path of the file the Authorization cookie is persisted to
	Version             string
	LogLevel            string
	HTTPTimeout         int // Request timeout in seconds
	TokenRefreshMinutes int // Interval between JWT refresh calls
	HistoryPageSize     int // Conversations fetched per history page
	PersonaID           int // Persona selected at startup (1 = Atlas)
}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		BaseURL:             getEnv("ATLAS_BASE_URL", "http://localhost:8000"),
		CookieFile:          getEnv("ATLAS_COOKIE_FILE", ".atlas-cookie"),
		Version:             getEnv("VERSION", "1.0.0"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		HTTPTimeout:         getEnvInt("HTTP_TIMEOUT", 60),          // Draft generation can be slow
		TokenRefreshMinutes: getEnvInt("TOKEN_REFRESH_MINUTES", 30), // Matches the backend token lifetime
		HistoryPageSize:     getEnvInt("HISTORY_PAGE_SIZE", 10),     // Page size for scrolling history
		PersonaID:           getEnvInt("PERSONA_ID", 1),             // Only "Atlas" exists today
	}

	return config
}

// RefreshInterval returns the token refresh interval as a duration
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.TokenRefreshMinutes) * time.Minute
}

// RequestTimeout returns the per-request HTTP timeout as a duration
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	// Configure zerolog to output JSON without newlines
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Create logger with JSON output to stderr, keeping stdout for the chat transcript
	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", "atlas").
		Str("version", c.Version).
		Logger()

	// Set log level based on configuration
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	return logger
}
