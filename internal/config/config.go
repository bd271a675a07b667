package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Session configuration
	JWTSecret  string
	SessionTTL time.Duration

	// Platform superuser account (kept outside the tenant users table)
	SuperuserName     string
	SuperuserPassword string

	// Credential store (DynamoDB) configuration
	DynamoEndpoint    string
	DynamoRegion      string
	DynamoAccessKey   string
	DynamoSecretKey   string
	DynamoTablePrefix string
	DynamoTimeout     time.Duration

	// Object store (S3) configuration
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Timeout   time.Duration
}

// Load loads configuration from environment variables. A .env file in
// the working directory is merged in when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		DBType:            getEnv("DB_TYPE", "mysql"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: getEnvAsDuration("SESSION_TTL", 12*time.Hour),

		SuperuserName:     getEnv("SUPERUSER_NAME", ""),
		SuperuserPassword: getEnv("SUPERUSER_PASSWORD", ""),

		DynamoEndpoint:    getEnv("DYNAMODB_ENDPOINT_URL", ""),
		DynamoRegion:      getEnv("DYNAMODB_REGION_NAME", "ap-northeast-1"),
		DynamoAccessKey:   getEnv("DYNAMODB_ACCESS_KEY_ID", ""),
		DynamoSecretKey:   getEnv("DYNAMODB_SECRET_ACCESS_KEY", ""),
		DynamoTablePrefix: getEnv("DYNAMODB_TABLE_PREFIX", ""),
		DynamoTimeout:     getEnvAsDuration("DYNAMODB_TIMEOUT", 5*time.Second),

		S3Endpoint:  getEnv("AWS_S3_ENDPOINT_URL", ""),
		S3Region:    getEnv("AWS_S3_REGION_NAME", "ap-northeast-1"),
		S3AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3Bucket:    getEnv("AWS_STORAGE_BUCKET_NAME", "manuals"),
		S3Timeout:   getEnvAsDuration("S3_TIMEOUT", 30*time.Second),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBType != "sqlite" && cfg.DBUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SuperuserName == "" || cfg.SuperuserPassword == "" {
		return nil, fmt.Errorf("SUPERUSER_NAME and SUPERUSER_PASSWORD are required")
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
