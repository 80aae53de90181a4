package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string

	JWTSecret string
	JWTExpiry time.Duration

	LogFile  string
	LogLevel string

	// Canonical names of the operational task statuses.
	DoneStatus     string
	WipStatus      string
	ToReviewStatus string

	EventsWebhookURL     string
	EventsWebhookTimeout time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "prodtrack"),
		DBPassword: getEnv("DB_PASSWORD", "prodtrack"),
		DBName:     getEnv("DB_NAME", "prodtrack"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		JWTSecret: getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,

		LogFile:  getEnv("LOG_FILE", "logs/prodtrack.log"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DoneStatus:     getEnv("DONE_TASK_STATUS", "Done"),
		WipStatus:      getEnv("WIP_TASK_STATUS", "WIP"),
		ToReviewStatus: getEnv("TO_REVIEW_TASK_STATUS", "To review"),

		EventsWebhookURL:     getEnv("EVENTS_WEBHOOK_URL", ""),
		EventsWebhookTimeout: time.Duration(getEnvInt("EVENTS_WEBHOOK_TIMEOUT_SECONDS", 2)) * time.Second,
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, value, defaultVal)
		return defaultVal
	}
	return n
}
