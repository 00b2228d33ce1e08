package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds the full runtime configuration, loaded once from the
// environment at startup.
type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string

	JWTSecret          string
	AccessTokenExpiry  time.Duration
	MaxUploadSizeBytes int64

	// Origin allowed by CORS.
	FrontendBaseURL string
}

// Cfg is the global configuration instance.
var Cfg *AppConfig

// LoadConfig reads a .env file when present, then resolves every setting
// from the environment. Missing JWT_SECRET aborts startup.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		// When launched from a subdirectory the .env sits one level up.
		err = godotenv.Load("../.env")
		if err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: error loading .env file: %v. Relying on OS environment.", err)
		}
	}

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./budgetfolio.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		JWTSecret:          getRequiredEnv("JWT_SECRET"),
		AccessTokenExpiry:  getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 60*time.Minute),
		MaxUploadSizeBytes: getEnvAsInt64("MAX_UPLOAD_SIZE_BYTES", 10*1024*1024),

		FrontendBaseURL: getEnv("APP_BASE_URL", "http://localhost:3000"),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, FrontendURL=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.FrontendBaseURL)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getRequiredEnv terminates the process when the variable is unset. Used
// only for settings with no safe default.
func getRequiredEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		log.Fatalf("FATAL: required environment variable %s is not set", key)
	}
	return value
}

func getEnvAsInt64(key string, fallback int64) int64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Invalid integer value for %s (%q), using default %d", key, valueStr, fallback)
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid duration value for %s (%q), using default %s", key, valueStr, fallback)
		return fallback
	}
	return value
}
