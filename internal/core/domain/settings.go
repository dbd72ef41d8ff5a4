package domain

import (
	"fmt"
	"strings"
	"time"
)

// ModelProvider identifies a remote inference provider.
type ModelProvider string

// Available model providers.
const (
	// ProviderOpenAI is the OpenAI cloud API.
	ProviderOpenAI ModelProvider = "openai"

	// ProviderAnthropic is the Anthropic cloud API.
	ProviderAnthropic ModelProvider = "anthropic"

	// ProviderCompatible is any OpenAI-compatible endpoint
	// (DeepInfra, local inference servers).
	ProviderCompatible ModelProvider = "compatible"
)

// IsValid returns true if the provider is recognised.
func (p ModelProvider) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderCompatible:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p ModelProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p ModelProvider) Description() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI (cloud)"
	case ProviderAnthropic:
		return "Anthropic (cloud)"
	case ProviderCompatible:
		return "OpenAI-compatible endpoint"
	default:
		return unknownDescription
	}
}

// ProviderForModel routes a model name to its provider. Claude models go to
// Anthropic, GPT models to OpenAI, everything else to the compatible
// endpoint.
func ProviderForModel(model string) ModelProvider {
	switch {
	case strings.HasPrefix(model, "claude"):
		return ProviderAnthropic
	case strings.HasPrefix(model, "gpt"), strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"):
		return ProviderOpenAI
	default:
		return ProviderCompatible
	}
}

// ChunkingSettings holds chunker configuration.
type ChunkingSettings struct {
	// ChunkTokens is the window size N in tokens.
	ChunkTokens int

	// OverlapTokens is the overlap O between consecutive windows. O < N.
	OverlapTokens int
}

// ScoringSettings holds BM25 tuning constants.
type ScoringSettings struct {
	// K1 is the term-frequency saturation constant.
	K1 float64

	// B is the length-normalisation constant.
	B float64
}

// RetrievalSettings holds context retrieval configuration.
type RetrievalSettings struct {
	// TopK is the number of chunks fetched as context.
	TopK int

	// Timeout bounds a context query. On expiry the pipeline proceeds
	// with empty context.
	Timeout time.Duration
}

// CacheSettings holds answer cache configuration.
type CacheSettings struct {
	// TTL is the maximum age of a cached answer.
	TTL time.Duration

	// Capacity is the maximum number of cached answers (LRU bound).
	Capacity int
}

// RateLimitSettings holds outbound call budget configuration.
type RateLimitSettings struct {
	// Burst is the token bucket size.
	Burst int

	// RefillPerSecond is the bucket refill rate.
	RefillPerSecond float64

	// MaxWait bounds how long a caller may block for a token before the
	// request is rejected as rate limited.
	MaxWait time.Duration
}

// ModelSettings holds remote model configuration.
type ModelSettings struct {
	// Model is the model name; the provider is derived from it via
	// ProviderForModel unless Provider is set explicitly.
	Model string

	// Provider overrides model-name routing when set.
	Provider ModelProvider

	// BaseURL is the endpoint for ProviderCompatible.
	BaseURL string

	// Timeout bounds a single model call.
	Timeout time.Duration

	// MaxRetries is the retry budget for transient failures.
	MaxRetries int
}

// EffectiveProvider resolves the provider for these settings.
func (m ModelSettings) EffectiveProvider() ModelProvider {
	if m.Provider.IsValid() {
		return m.Provider
	}
	return ProviderForModel(m.Model)
}

// Settings holds all tunables consumed by the core.
type Settings struct {
	// WatchFolder is the root of the local document corpus.
	WatchFolder string

	// ScanInterval is the fallback periodic rescan interval used in
	// addition to filesystem notifications.
	ScanInterval time.Duration

	// Chunking holds chunker settings.
	Chunking ChunkingSettings

	// Scoring holds BM25 settings.
	Scoring ScoringSettings

	// Retrieval holds context retrieval settings.
	Retrieval RetrievalSettings

	// Cache holds answer cache settings.
	Cache CacheSettings

	// RateLimit holds the outbound call budget.
	RateLimit RateLimitSettings

	// Model holds remote model settings.
	Model ModelSettings
}

// DefaultSettings returns settings with sensible defaults.
// The watch folder is left empty; the CLI requires it explicitly.
func DefaultSettings() Settings {
	return Settings{
		ScanInterval: 5 * time.Minute,
		Chunking: ChunkingSettings{
			ChunkTokens:   200,
			OverlapTokens: 40,
		},
		Scoring: ScoringSettings{
			K1: 1.5,
			B:  0.75,
		},
		Retrieval: RetrievalSettings{
			TopK:    5,
			Timeout: time.Second,
		},
		Cache: CacheSettings{
			TTL:      10 * time.Minute,
			Capacity: 1000,
		},
		RateLimit: RateLimitSettings{
			Burst:           5,
			RefillPerSecond: 0.5,
			MaxWait:         10 * time.Second,
		},
		Model: ModelSettings{
			Model:      "gpt-4o-mini",
			Timeout:    2 * time.Minute,
			MaxRetries: 2,
		},
	}
}

// Validate checks the settings for internal consistency.
func (s Settings) Validate() error {
	if s.Chunking.ChunkTokens <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidInput)
	}
	if s.Chunking.OverlapTokens < 0 || s.Chunking.OverlapTokens >= s.Chunking.ChunkTokens {
		return fmt.Errorf("%w: overlap must be in [0, chunk size)", ErrInvalidInput)
	}
	if s.Scoring.K1 < 0 {
		return fmt.Errorf("%w: k1 must be non-negative", ErrInvalidInput)
	}
	if s.Scoring.B < 0 || s.Scoring.B > 1 {
		return fmt.Errorf("%w: b must be in [0, 1]", ErrInvalidInput)
	}
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top-k must be positive", ErrInvalidInput)
	}
	if s.Cache.Capacity <= 0 {
		return fmt.Errorf("%w: cache capacity must be positive", ErrInvalidInput)
	}
	if s.RateLimit.Burst <= 0 || s.RateLimit.RefillPerSecond <= 0 {
		return fmt.Errorf("%w: rate limit burst and refill must be positive", ErrInvalidInput)
	}
	return nil
}
