package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8080")
	}
	if cfg.ModelProvider != "auto" {
		t.Fatalf("ModelProvider = %q, want %q", cfg.ModelProvider, "auto")
	}
	if cfg.CompletionModel != "gpt-4o-mini" {
		t.Fatalf("CompletionModel = %q, want %q", cfg.CompletionModel, "gpt-4o-mini")
	}
	if cfg.ImageModel != "dall-e-3" {
		t.Fatalf("ImageModel = %q, want %q", cfg.ImageModel, "dall-e-3")
	}
	if cfg.ImageSize != "1024x1024" {
		t.Fatalf("ImageSize = %q, want %q", cfg.ImageSize, "1024x1024")
	}
	if cfg.FreeDailyMessages != 10 {
		t.Fatalf("FreeDailyMessages = %d, want 10", cfg.FreeDailyMessages)
	}
	if cfg.ImageTimeout != 60*time.Second {
		t.Fatalf("ImageTimeout = %v, want 60s", cfg.ImageTimeout)
	}
}

func TestLoadOpenAIProviderRequiresKey(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("MODEL_PROVIDER", "openai")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() with MODEL_PROVIDER=openai and no key should fail")
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Fatalf("OpenAIAPIKey = %q, want explicit value", cfg.OpenAIAPIKey)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("MODEL_PROVIDER", "gemini")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() with unknown MODEL_PROVIDER should fail")
	}
}

func TestLoadRejectsNonPositiveLimit(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("FREE_MESSAGE_LIMIT", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() with FREE_MESSAGE_LIMIT=0 should fail")
	}
}

func TestLoadParsesTimeouts(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("COMPLETION_TIMEOUT", "12s")
	t.Setenv("IMAGE_TIMEOUT", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CompletionTimeout != 12*time.Second {
		t.Fatalf("CompletionTimeout = %v, want 12s", cfg.CompletionTimeout)
	}
	if cfg.ImageTimeout != 90*time.Second {
		t.Fatalf("ImageTimeout = %v, want 90s", cfg.ImageTimeout)
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"MODEL_PROVIDER",
		"OPENAI_API_KEY",
		"OPENAI_BASE_URL",
		"COMPLETION_MODEL",
		"COMPLETION_MAX_TOKENS",
		"COMPLETION_TIMEOUT",
		"VISION_MODEL",
		"VISION_MAX_TOKENS",
		"VISION_TIMEOUT",
		"IMAGE_MODEL",
		"IMAGE_SIZE",
		"IMAGE_QUALITY",
		"IMAGE_TIMEOUT",
		"FREE_MESSAGE_LIMIT",
		"DATABASE_URL",
		"REDIS_ADDR",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}
