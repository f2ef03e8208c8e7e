package config

import (
	"os"
	"strconv"
)

type Config struct {
	ChronoBaseURL string

	LogLevel  string
	LogFormat string

	// MetricsPort exposes Prometheus metrics while a run is in flight.
	// Empty disables the listener.
	MetricsPort string

	InterFileDelayMS    int
	WorkerStartJitterMS int

	RetryMaxAttempts   int
	RetryBackoffBaseMS int
	RetryBackoffMaxMS  int

	HTTPTimeoutSeconds int
}

func Load() Config {
	return Config{
		ChronoBaseURL: mustEnv("CHRONO_BASE_URL", "https://app.drchrono.com"),

		LogLevel:  mustEnv("LOG_LEVEL", "info"),
		LogFormat: mustEnv("LOG_FORMAT", "text"),

		MetricsPort: mustEnv("METRICS_PORT", ""),

		InterFileDelayMS:    mustEnvInt("INTER_FILE_DELAY_MS", 2000),
		WorkerStartJitterMS: mustEnvInt("WORKER_START_JITTER_MS", 500),

		RetryMaxAttempts:   mustEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryBackoffBaseMS: mustEnvInt("RETRY_BACKOFF_BASE_MS", 2000),
		RetryBackoffMaxMS:  mustEnvInt("RETRY_BACKOFF_MAX_MS", 30000),

		HTTPTimeoutSeconds: mustEnvInt("HTTP_TIMEOUT_SECONDS", 60),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
