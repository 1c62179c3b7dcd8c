package openai

import (
	"errors"

	"github.com/tjfontaine/innkeeper/internal/provider"
)

// ProviderType is the provider type identifier used in configuration.
const ProviderType = "openai"

// ProviderTypeCompatible is the provider type for OpenAI-compatible APIs.
const ProviderTypeCompatible = "openai-compatible"

// RegisterProviderFactory registers both OpenAI provider types. It is safe to call
// more than once.
func RegisterProviderFactory() {
	if !provider.IsRegistered(ProviderType) {
		provider.RegisterFactory(provider.Factory{
			Type:           ProviderType,
			Description:    "OpenAI chat completions API",
			Create:         CreateFromConfig,
			ValidateConfig: ValidateConfig,
		})
	}
	if !provider.IsRegistered(ProviderTypeCompatible) {
		provider.RegisterFactory(provider.Factory{
			Type:           ProviderTypeCompatible,
			Description:    "OpenAI-compatible chat completions server",
			Create:         CreateFromConfig,
			ValidateConfig: ValidateCompatibleConfig,
		})
	}
}

// CreateFromConfig creates a new OpenAI provider from configuration.
func CreateFromConfig(cfg provider.Config) (provider.ChatModel, error) {
	var opts []ProviderOption
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	return New(cfg.APIKey, opts...), nil
}

// ValidateConfig requires an API key for the hosted API.
func ValidateConfig(cfg provider.Config) error {
	if cfg.APIKey == "" {
		return errors.New("api_key is required")
	}
	return nil
}

// ValidateCompatibleConfig requires a base URL. The API key is optional since some
// local servers don't need one.
func ValidateCompatibleConfig(cfg provider.Config) error {
	if cfg.BaseURL == "" {
		return errors.New("base_url is required")
	}
	return nil
}
