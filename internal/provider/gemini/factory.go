package gemini

import (
	"context"
	"errors"

	"github.com/tjfontaine/innkeeper/internal/provider"
)

// RegisterProviderFactory registers the Gemini provider type. It is safe to call
// more than once.
func RegisterProviderFactory() {
	if provider.IsRegistered(ProviderType) {
		return
	}
	provider.RegisterFactory(provider.Factory{
		Type:           ProviderType,
		Description:    "Google Gemini API",
		Create:         CreateFromConfig,
		ValidateConfig: ValidateConfig,
	})
}

// CreateFromConfig creates a Gemini provider from configuration.
func CreateFromConfig(cfg provider.Config) (provider.ChatModel, error) {
	var opts []ProviderOption
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	return New(context.Background(), cfg.APIKey, opts...)
}

// ValidateConfig requires an API key.
func ValidateConfig(cfg provider.Config) error {
	if cfg.APIKey == "" {
		return errors.New("api_key is required")
	}
	return nil
}
