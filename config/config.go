package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port           string
	AllowedOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	EpguidesBaseURL string
	TVMazeBaseURL   string

	RefreshInterval time.Duration

	// Per-client request budget.
	RateLimitPerMinute int
	RateLimitBurst     int

	// Natural-language assist; the feature stays off while these are empty.
	AssistAPIURL string
	AssistAPIKey string
	AssistModel  string

	// Log rotation; stderr only when empty.
	LogFile string
}

func Load() Config {
	return Config{
		Port:               env("PORT", "8040"),
		AllowedOrigins:     envList("ALLOWED_ORIGINS"),
		RedisAddr:          env("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      env("REDIS_PASSWORD", ""),
		RedisDB:            envInt("REDIS_DB", 0),
		EpguidesBaseURL:    env("EPGUIDES_BASE_URL", ""),
		TVMazeBaseURL:      env("TVMAZE_BASE_URL", ""),
		RefreshInterval:    envDuration("REFRESH_INTERVAL", 6*time.Hour),
		RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:     envInt("RATE_LIMIT_BURST", 30),
		AssistAPIURL:       env("ASSIST_API_URL", ""),
		AssistAPIKey:       env("ASSIST_API_KEY", ""),
		AssistModel:        env("ASSIST_MODEL", ""),
		LogFile:            env("LOG_FILE", ""),
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
