package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Redis
	RedisURL      string
	RedisPoolSize int

	// Server
	Port string

	// Game Settings
	GameDurationSeconds  int
	CountdownSeconds     int
	MaxSearchDepth       int
	SolutionPathCount    int
	EndpointPickAttempts int

	// Security
	JWTSecret string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/gridironlink?sslmode=disable"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPoolSize: getEnvInt("REDIS_POOL_SIZE", 10),

		// Server
		Port: getEnv("APP_PORT", "8080"),

		// Game Settings
		GameDurationSeconds:  getEnvInt("GAME_DURATION_SECONDS", 60),
		CountdownSeconds:     getEnvInt("COUNTDOWN_SECONDS", 3),
		MaxSearchDepth:       getEnvInt("MAX_SEARCH_DEPTH", 5),
		SolutionPathCount:    getEnvInt("SOLUTION_PATH_COUNT", 3),
		EndpointPickAttempts: getEnvInt("ENDPOINT_PICK_ATTEMPTS", 50),

		// Security
		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
