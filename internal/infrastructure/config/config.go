// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL reference data
	PostgresURI string

	// Gmail
	GmailEnabled         bool
	GmailClientID        string
	GmailClientSecret    string
	GmailRefreshToken    string
	GmailPollInterval    time.Duration
	GmailSubjectKeywords []string

	// Conversion
	ProcessInterval     time.Duration
	StaleProcessing     time.Duration
	OutputDir           string
	ProducerName        string
	DefaultCarrier      string
	Carriers            []string
	SortByFlight        bool
	ValidateConnections bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "ssim"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", "host=localhost user=postgres dbname=reference sslmode=disable"),

		GmailEnabled:         getEnvAsBool("GMAIL_ENABLED", true),
		GmailClientID:        getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret:    getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken:    getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailPollInterval:    time.Duration(getEnvAsInt("GMAIL_POLL_INTERVAL", 60)) * time.Second,
		GmailSubjectKeywords: getEnvAsList("GMAIL_SUBJECT_KEYWORDS", []string{"schedule", "ssim", "TS09", "cirium"}),

		ProcessInterval:     time.Duration(getEnvAsInt("PROCESS_INTERVAL", 30)) * time.Second,
		StaleProcessing:     time.Duration(getEnvAsInt("STALE_PROCESSING_MINUTES", 15)) * time.Minute,
		OutputDir:           getEnv("OUTPUT_DIR", "./output"),
		ProducerName:        getEnv("PRODUCER_NAME", "SSIM Converter"),
		DefaultCarrier:      getEnv("DEFAULT_CARRIER", "TS"),
		Carriers:            getEnvAsList("CARRIERS", nil),
		SortByFlight:        getEnvAsBool("SORT_BY_FLIGHT", false),
		ValidateConnections: getEnvAsBool("VALIDATE_CONNECTIONS", true),
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
