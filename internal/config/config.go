package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the process configuration, loaded from the environment once at
// startup. Only DatabaseURL and JWTSecret are required: a missing Redis
// configuration degrades the rate limiter to fail-open instead of refusing
// to start.
type Config struct {
	Port        int
	DatabaseURL string

	RedisURL      string
	RedisPassword string

	JWTSecret   string
	JWTLifetime time.Duration

	LogLevel       string
	AllowedOrigins []string

	FeedsConfigPath string
	AWSRegion       string

	CleanupInterval time.Duration
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            envInt("PORT", 8080),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTLifetime:     envDuration("JWT_LIFETIME", 24*time.Hour),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		AllowedOrigins:  envList("ALLOWED_ORIGINS", []string{"*"}),
		FeedsConfigPath: os.Getenv("FEEDS_CONFIG_PATH"),
		AWSRegion:       os.Getenv("AWS_REGION"),
		CleanupInterval: envDuration("RATELIMIT_CLEANUP_INTERVAL", 10*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
