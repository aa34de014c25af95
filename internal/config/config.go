package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the DearX chat service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	// ModelProvider selects the model backend: auto|openai|mock.
	// "auto" picks openai when an API key is present, mock otherwise.
	ModelProvider string

	OpenAIAPIKey  string
	OpenAIBaseURL string

	CompletionModel     string
	CompletionMaxTokens int
	CompletionTimeout   time.Duration

	VisionModel     string
	VisionMaxTokens int
	VisionTimeout   time.Duration

	ImageModel   string
	ImageSize    string
	ImageQuality string
	ImageTimeout time.Duration

	FreeDailyMessages int

	DatabaseURL string
	RedisAddr   string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "dearx"),
		ModelProvider:    envOrDefault("MODEL_PROVIDER", "auto"),
		OpenAIAPIKey:     trimmedEnv("OPENAI_API_KEY"),
		OpenAIBaseURL:    envOrDefault("OPENAI_BASE_URL", "https://api.openai.com"),
		CompletionModel:  envOrDefault("COMPLETION_MODEL", "gpt-4o-mini"),
		// Replies should stay short (1-2 sentences), so a small cap is enough.
		CompletionMaxTokens: 400,
		CompletionTimeout:   30 * time.Second,
		VisionModel:         envOrDefault("VISION_MODEL", "gpt-4o-mini"),
		VisionMaxTokens:     500,
		VisionTimeout:       30 * time.Second,
		ImageModel:          envOrDefault("IMAGE_MODEL", "dall-e-3"),
		ImageSize:           envOrDefault("IMAGE_SIZE", "1024x1024"),
		ImageQuality:        envOrDefault("IMAGE_QUALITY", "standard"),
		// Image generation is the slowest upstream call.
		ImageTimeout:      60 * time.Second,
		FreeDailyMessages: 10,
		DatabaseURL:       trimmedEnv("DATABASE_URL"),
		RedisAddr:         trimmedEnv("REDIS_ADDR"),
		ShutdownTimeout:   15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CompletionTimeout, err = durationFromEnv("COMPLETION_TIMEOUT", cfg.CompletionTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.VisionTimeout, err = durationFromEnv("VISION_TIMEOUT", cfg.VisionTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ImageTimeout, err = durationFromEnv("IMAGE_TIMEOUT", cfg.ImageTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CompletionMaxTokens, err = intFromEnv("COMPLETION_MAX_TOKENS", cfg.CompletionMaxTokens)
	if err != nil {
		return Config{}, err
	}
	cfg.VisionMaxTokens, err = intFromEnv("VISION_MAX_TOKENS", cfg.VisionMaxTokens)
	if err != nil {
		return Config{}, err
	}
	cfg.FreeDailyMessages, err = intFromEnv("FREE_MESSAGE_LIMIT", cfg.FreeDailyMessages)
	if err != nil {
		return Config{}, err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.ModelProvider)) {
	case "auto", "openai", "mock":
	default:
		return Config{}, fmt.Errorf("invalid MODEL_PROVIDER: %q (expected auto|openai|mock)", cfg.ModelProvider)
	}
	if strings.EqualFold(cfg.ModelProvider, "openai") && cfg.OpenAIAPIKey == "" {
		return Config{}, fmt.Errorf("MODEL_PROVIDER=openai but OPENAI_API_KEY is not set")
	}
	if cfg.CompletionMaxTokens <= 0 {
		return Config{}, fmt.Errorf("COMPLETION_MAX_TOKENS must be positive")
	}
	if cfg.VisionMaxTokens <= 0 {
		return Config{}, fmt.Errorf("VISION_MAX_TOKENS must be positive")
	}
	if cfg.FreeDailyMessages <= 0 {
		return Config{}, fmt.Errorf("FREE_MESSAGE_LIMIT must be positive")
	}
	if cfg.CompletionTimeout < time.Second || cfg.VisionTimeout < time.Second || cfg.ImageTimeout < time.Second {
		return Config{}, fmt.Errorf("model call timeouts must be at least 1s")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
