// Package model provides factory functions for creating model clients.
// Provider selection keys off the model name: claude models go to the
// Anthropic API, everything else to OpenAI or an OpenAI-compatible endpoint.
package model

import (
	"fmt"

	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/model/anthropic"
	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/model/openai"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
)

// Credentials holds the per-provider API keys.
type Credentials struct {
	OpenAIKey    string
	AnthropicKey string
}

// keyFor returns the key matching a provider.
func (c Credentials) keyFor(provider domain.ModelProvider) string {
	if provider == domain.ProviderAnthropic {
		return c.AnthropicKey
	}
	return c.OpenAIKey
}

// NewClient creates a model client for the configured model.
func NewClient(settings domain.ModelSettings, creds Credentials) (driven.ModelClient, error) {
	provider := settings.EffectiveProvider()
	apiKey := creds.keyFor(provider)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured for provider %s",
			domain.ErrModelUnavailable, provider)
	}

	switch provider {
	case domain.ProviderAnthropic:
		return anthropic.New(anthropic.Config{
			APIKey:  apiKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})
	case domain.ProviderOpenAI, domain.ProviderCompatible:
		return openai.New(openai.Config{
			APIKey:  apiKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", domain.ErrModelUnavailable, provider)
	}
}
