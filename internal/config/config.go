// Package config reads runtime configuration from the environment and an
// optional .env file. Per-day scheduling knobs live in stored settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/keyring"
)

const (
	MarkerBackendDB    = "db"
	MarkerBackendRedis = "redis"

	CalendarLocal  = "local"
	CalendarGoogle = "google"
)

type Config struct {
	OpenAI   OpenAIConfig
	Redis    RedisConfig
	Google   GoogleConfig
	HTTPAddr string
	// MarkerBackend selects where day markers and claims live.
	MarkerBackend string
	// Calendar selects the calendar collaborator.
	Calendar string
	ClaimTTL time.Duration
}

type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	Prefix    string
	MarkerTTL time.Duration
}

type GoogleConfig struct {
	Credentials string
	CalendarID  string
	Workers     int
}

// Load reads the given .env files (default ".env"), ignoring missing ones,
// then builds a Config from the environment. Existing variables win over
// .env values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func FromEnv() Config {
	return Config{
		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("FLOWMIND_OPENAI_MODEL", ""),
			BaseURL:     getEnv("FLOWMIND_OPENAI_BASE_URL", ""),
			MaxTokens:   getEnvAsInt("FLOWMIND_OPENAI_MAX_TOKENS", 0),
			Temperature: getEnvAsFloat("FLOWMIND_OPENAI_TEMPERATURE", 0),
		},
		Redis: RedisConfig{
			Addr:      getEnv("FLOWMIND_REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("FLOWMIND_REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("FLOWMIND_REDIS_DB", 0),
			Prefix:    getEnv("FLOWMIND_REDIS_PREFIX", constants.AppName),
			MarkerTTL: getEnvAsDuration("FLOWMIND_MARKER_TTL", constants.DefaultMarkerTTL),
		},
		Google: GoogleConfig{
			Credentials: getEnv("FLOWMIND_GOOGLE_CREDENTIALS", ""),
			CalendarID:  getEnv("FLOWMIND_GOOGLE_CALENDAR_ID", "primary"),
			Workers:     getEnvAsInt("FLOWMIND_GOOGLE_WORKERS", constants.DefaultCalendarWorkers),
		},
		HTTPAddr:      getEnv("FLOWMIND_HTTP_ADDR", constants.DefaultHTTPAddr),
		MarkerBackend: getEnv("FLOWMIND_MARKER_BACKEND", MarkerBackendDB),
		Calendar:      getEnv("FLOWMIND_CALENDAR", CalendarLocal),
		ClaimTTL:      getEnvAsDuration("FLOWMIND_CLAIM_TTL", constants.DefaultClaimTTL),
	}
}

func (c Config) Validate() error {
	switch c.MarkerBackend {
	case MarkerBackendDB, MarkerBackendRedis:
	default:
		return fmt.Errorf("FLOWMIND_MARKER_BACKEND must be %q or %q, got %q", MarkerBackendDB, MarkerBackendRedis, c.MarkerBackend)
	}
	switch c.Calendar {
	case CalendarLocal:
	case CalendarGoogle:
		if c.Google.Credentials == "" {
			return fmt.Errorf("FLOWMIND_GOOGLE_CREDENTIALS is required when FLOWMIND_CALENDAR=%s", CalendarGoogle)
		}
	default:
		return fmt.Errorf("FLOWMIND_CALENDAR must be %q or %q, got %q", CalendarLocal, CalendarGoogle, c.Calendar)
	}
	if c.ClaimTTL <= 0 {
		return fmt.Errorf("FLOWMIND_CLAIM_TTL must be positive")
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return fmt.Errorf("FLOWMIND_OPENAI_TEMPERATURE must be between 0 and 2")
	}
	return nil
}

// ResolveOpenAIKey fills in the API key from the OS keyring when the
// environment does not provide one.
func (c *Config) ResolveOpenAIKey() {
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = keyring.Lookup(keyring.SecretOpenAI)
	}
}

// GenerativeEnabled reports whether an OpenAI key is configured.
func (c Config) GenerativeEnabled() bool {
	return c.OpenAI.APIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
