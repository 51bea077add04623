package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LogFormat    string // "json" or "pretty"
	LogLevel     string

	// Database configuration
	DatabaseURL string

	// Auth configuration
	JWTSecret            string
	JWTAccessExpiration  time.Duration
	JWTRefreshExpiration time.Duration

	// Storage configuration (S3-compatible, for receipt images)
	S3Endpoint        string
	S3AccessKeyID     string
	S3AccessKeySecret string
	S3Bucket          string
	S3Region          string

	// Public catalog configuration
	PublicCatalogEmail string

	// Tax rule configuration. The fixed cap is a CRA-published constant that
	// changes yearly, so it is configuration rather than code.
	TaxMedicalFixedCap float64
	TaxThresholdRate   float64
	TaxEstimateRate    float64
}

// LoadConfig loads the application configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file. Using environment variables.")
	}

	config := &Config{
		// Server configuration
		Port:         getEnvInt("PORT", 8080),
		ReadTimeout:  time.Duration(getEnvInt("READ_TIMEOUT", 15)) * time.Second,
		WriteTimeout: time.Duration(getEnvInt("WRITE_TIMEOUT", 15)) * time.Second,
		LogFormat:    getEnvString("LOG_FORMAT", "json"),
		LogLevel:     getEnvString("LOG_LEVEL", "info"),

		// Database configuration
		DatabaseURL: os.Getenv("POSTGRES_DB_URL"),

		// Auth configuration
		JWTSecret:            os.Getenv("JWT_SECRET"),
		JWTAccessExpiration:  time.Duration(getEnvInt("JWT_ACCESS_EXPIRATION_MINUTES", 60)) * time.Minute,
		JWTRefreshExpiration: time.Duration(getEnvInt("JWT_REFRESH_EXPIRATION_HOURS", 720)) * time.Hour,

		// Storage configuration
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3AccessKeySecret: os.Getenv("S3_ACCESS_KEY_SECRET"),
		S3Bucket:          getEnvString("S3_BUCKET", "receipts"),
		S3Region:          getEnvString("S3_REGION", "us-east-1"),

		// Public catalog configuration
		PublicCatalogEmail: getEnvString("PUBLIC_CATALOG_EMAIL", "admin@celiacapp.com"),

		// Tax rule configuration
		TaxMedicalFixedCap: getEnvFloat("TAX_MEDICAL_FIXED_CAP", 2759),
		TaxThresholdRate:   getEnvFloat("TAX_THRESHOLD_RATE", 0.03),
		TaxEstimateRate:    getEnvFloat("TAX_ESTIMATE_RATE", 0.25),
	}

	validateConfig(config)

	return config, nil
}

// validateConfig checks if critical configuration values are set and logs warnings if they're missing
func validateConfig(config *Config) {
	if config.DatabaseURL == "" {
		log.Println("Warning: POSTGRES_DB_URL is not set. Database connections will fail.")
	}

	if config.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET is not set. Authentication will fail.")
	}

	if config.S3Endpoint == "" || config.S3AccessKeyID == "" {
		log.Println("Warning: S3 storage is not configured. Receipt image uploads will fail.")
	}
}

// getEnvInt gets an integer from an environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvFloat gets a float from an environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %g", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvString gets a string from an environment variable with a default value
func getEnvString(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
