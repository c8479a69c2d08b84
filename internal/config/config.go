package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	GoogleAPIKey      string
	GeminiModel       string
	GeminiEndpoint    string
	AITimeout         time.Duration
	DatasetPath       string
	Environment       string
	AllowedOrigins    []string
	RateLimit         int
	RateLimitWindow   time.Duration
	MaxQuestionLength int
	ListenAddr        string
	PostgresUser      string
	PostgresPassword  string
	PostgresHost      string
	PostgresPort      string
	PostgresDatabase  string
	PostgresSSLMode   string
}

func Load() *Config {
	// Optional .env for local development; env vars win.
	_ = godotenv.Load()

	cfg := &Config{
		GoogleAPIKey:      mustGetEnv("GOOGLE_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-pro"),
		GeminiEndpoint:    getEnv("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com"),
		AITimeout:         getEnvDuration("AI_TIMEOUT", 30*time.Second),
		DatasetPath:       getEnv("DATASET_PATH", "questions_dataset.yaml"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		AllowedOrigins:    splitOrigins(getEnv("ALLOWED_ORIGINS", "*")),
		RateLimit:         getEnvInt("RATE_LIMIT", 5),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		MaxQuestionLength: getEnvInt("MAX_QUESTION_LENGTH", 500),
		ListenAddr:        getEnv("LISTEN_ADDR", ":8000"),
		PostgresUser:      getEnv("POSTGRES_USER", "lawchat"),
		PostgresPassword:  getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:      getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:      getEnv("POSTGRES_PORT", "5432"),
		PostgresDatabase:  getEnv("POSTGRES_DATABASE", "lawchat"),
		PostgresSSLMode:   getEnv("POSTGRES_SSL_MODE", "disable"),
	}

	return cfg
}

func splitOrigins(value string) []string {
	var origins []string
	for _, origin := range strings.Split(value, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
