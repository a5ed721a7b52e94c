package main

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	AuthorityURL string
	AuthToken    string
	LogLevel     string
	LogFormat    string
	CacheTTL     time.Duration
}

func loadConfig() (Config, error) {
	_ = godotenv.Load("config/local.env")

	base := os.Getenv("AUTHORITY_URL")
	if base == "" {
		return Config{}, errors.New("AUTHORITY_URL env var is required")
	}

	ttl, err := time.ParseDuration(envOrDefault("CACHE_TTL", "5m"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		AuthorityURL: base,
		AuthToken:    os.Getenv("AUTH_TOKEN"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		LogFormat:    envOrDefault("LOG_FORMAT", "text"),
		CacheTTL:     ttl,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
