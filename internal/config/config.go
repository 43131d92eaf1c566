package config

import (
	"os"
	"time"
)

type Config struct {
	ServerPort      string
	DatabaseDSN     string
	TemporalAddress string
	BackendBaseURL  string
	BackendTimeout  time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DatabaseDSN:     getEnv("DATABASE_DSN", "storefront_user:storefront_pass@tcp(localhost:3306)/flight_storefront?parseTime=true"),
		TemporalAddress: getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		BackendBaseURL:  getEnv("BACKEND_BASE_URL", "http://localhost:3000"),
		BackendTimeout:  parseDuration(getEnv("BACKEND_TIMEOUT", "30s")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
