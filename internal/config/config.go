package config

import (
	"os"
	"strconv"
	"time"

	"oracle/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	AI     AIConfig
	Run    RunConfig
	Paths  PathConfig
	Server ServerConfig
}

// AIConfig holds Gemini API settings
type AIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64
	Timeout     time.Duration
}

// RunConfig holds throughput and retry settings for a simulation run
type RunConfig struct {
	MaxConcurrent     int
	DelayBetweenCalls time.Duration
	RetryAttempts     int           // additional attempts after the first
	RetryBackoff      time.Duration // linear backoff unit
	TopN              int
}

// PathConfig holds file system paths
type PathConfig struct {
	TemplatesDir string
	OutputDir    string
}

// ServerConfig holds the results API settings
type ServerConfig struct {
	Port string
}

// Load reads the full configuration for a simulation run and validates it.
// GEMINI_API_KEY is required; MAX_CONCURRENT must be positive; negative
// DELAY_BETWEEN_CALLS is clamped to zero.
func Load() (*Config, error) {
	config, err := LoadOffline()
	if err != nil {
		return nil, err
	}
	if config.AI.APIKey == "" {
		return nil, errors.ConfigInvalid("GEMINI_API_KEY is required", nil)
	}
	return config, nil
}

// LoadOffline reads configuration without requiring an API key, for commands
// that only work with persisted output (report regeneration, the results
// API). Everything else is validated the same way Load does.
func LoadOffline() (*Config, error) {
	runConfig, err := loadRunConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load run configuration")
	}

	config := &Config{
		AI:  loadAIConfig(),
		Run: *runConfig,
		Paths: PathConfig{
			TemplatesDir: getEnvOrDefault("TEMPLATES_DIR", "./templates"),
			OutputDir:    getEnvOrDefault("OUTPUT_DIR", "./results"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
	}
	return config, nil
}

func loadAIConfig() AIConfig {
	return AIConfig{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		Model:       getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		MaxTokens:   getEnvIntOrDefault("MAX_OUTPUT_TOKENS", 4096),
		Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.7),
		TopP:        getEnvFloatOrDefault("TOP_P", 0.95),
		Timeout:     getEnvDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
	}
}

func loadRunConfig() (*RunConfig, error) {
	maxConcurrent := getEnvIntOrDefault("MAX_CONCURRENT", 5)
	if maxConcurrent <= 0 {
		return nil, errors.ConfigInvalid("MAX_CONCURRENT must be a positive integer", nil)
	}

	delay := time.Duration(getEnvFloatOrDefault("DELAY_BETWEEN_CALLS", 1.0) * float64(time.Second))
	if delay < 0 {
		delay = 0
	}

	retries := getEnvIntOrDefault("RETRY_ATTEMPTS", 2)
	if retries < 0 {
		retries = 0
	}

	return &RunConfig{
		MaxConcurrent:     maxConcurrent,
		DelayBetweenCalls: delay,
		RetryAttempts:     retries,
		RetryBackoff:      getEnvDurationOrDefault("RETRY_BACKOFF", 2*time.Second),
		TopN:              getEnvIntOrDefault("TOP_N", 5),
	}, nil
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
