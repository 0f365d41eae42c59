package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string
	ServerHost string

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// Judge0 code-execution service
	Judge0URL    string
	Judge0APIKey string
	Judge0Host   string

	// Bound on relay persistence calls (access check, content load/save)
	RelayWriteTimeout time.Duration

	// Observability
	JaegerEndpoint string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "codecollab"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerHost: getEnv("SERVER_HOST", "localhost"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,

		Judge0URL:    getEnv("JUDGE0_URL", "https://judge0-ce.p.rapidapi.com"),
		Judge0APIKey: getEnv("JUDGE0_API_KEY", ""),
		Judge0Host:   getEnv("JUDGE0_HOST", "judge0-ce.p.rapidapi.com"),

		RelayWriteTimeout: time.Duration(getEnvInt("RELAY_WRITE_TIMEOUT_SECONDS", 10)) * time.Second,

		JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if n, err := fmt.Sscanf(value, "%d", &result); err == nil && n == 1 {
			return result
		}
	}
	return defaultValue
}
