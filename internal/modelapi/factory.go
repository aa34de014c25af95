package modelapi

import (
	"fmt"
	"strings"
)

// Config controls client construction.
type Config struct {
	Provider string // auto|openai|mock
	BaseURL  string
	APIKey   string
}

// New builds the model client for the configured provider. "auto" picks
// openai when an API key is present and mock otherwise, so the service
// stays usable in keyless dev environments.
func New(cfg Config) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = "auto"
	}

	switch provider {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewOpenAIClient(cfg.BaseURL, cfg.APIKey), nil
		}
		return NewMockClient(), nil
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return NewOpenAIClient(cfg.BaseURL, cfg.APIKey), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unsupported model provider %q", cfg.Provider)
	}
}
