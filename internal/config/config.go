// Package config loads the gateway settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string        `validate:"required"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	BackendURL     string        `validate:"required,url"`
	BackendTimeout time.Duration `validate:"gt=0"`

	// Empty RedisAddr keeps the menu cache in process memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int           `validate:"gte=0"`
	MenuTTL       time.Duration `validate:"gt=0"`

	// Empty JournalPath keeps the checkout journal in process memory.
	JournalPath string

	FailOpenOnTableCheckError bool
	SessionIdleTTL            time.Duration `validate:"gt=0"`

	LogLevel     string  `validate:"oneof=debug info warn error"`
	OTLPEndpoint string
	Environment  string  `validate:"required"`
	SampleRatio  float64 `validate:"gte=0,lte=1"`
}

// Load reads .env files (missing files are ignored), then the environment.
// Variables already set in the environment win over .env entries.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load env file: %w", err)
	}

	var errs []error
	cfg := Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),

		BackendURL:     getEnv("BACKEND_URL", "http://localhost:8000/api"),
		BackendTimeout: getDuration("BACKEND_TIMEOUT", 30*time.Second, &errs),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0, &errs),
		MenuTTL:       getDuration("MENU_CACHE_TTL", 5*time.Minute, &errs),

		JournalPath: os.Getenv("JOURNAL_DB_PATH"),

		FailOpenOnTableCheckError: getBool("TABLE_CHECK_FAIL_OPEN", true, &errs),
		SessionIdleTTL:            getDuration("SESSION_IDLE_TTL", 2*time.Hour, &errs),

		LogLevel:     getEnv("LOG_LEVEL", "info"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Environment:  getEnv("DEPLOY_ENV", "local"),
		SampleRatio:  getFloat("OTEL_SAMPLE_RATIO", 1, &errs),
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
	}
	return d
}

func getInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
	}
	return n
}

func getBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
	}
	return b
}

func getFloat(key string, fallback float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
	}
	return f
}
