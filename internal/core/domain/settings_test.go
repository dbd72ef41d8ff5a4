package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProviderForModel tests model-name routing
func TestProviderForModel(t *testing.T) {
	assert.Equal(t, ProviderAnthropic, ProviderForModel("claude-3-5-sonnet-latest"))
	assert.Equal(t, ProviderOpenAI, ProviderForModel("gpt-4o-mini"))
	assert.Equal(t, ProviderOpenAI, ProviderForModel("o1-mini"))
	assert.Equal(t, ProviderCompatible, ProviderForModel("llama-3.3-70b"))
}

// TestModelSettings_EffectiveProvider tests explicit provider override
func TestModelSettings_EffectiveProvider(t *testing.T) {
	m := ModelSettings{Model: "gpt-4o-mini"}
	assert.Equal(t, ProviderOpenAI, m.EffectiveProvider())

	m.Provider = ProviderCompatible
	assert.Equal(t, ProviderCompatible, m.EffectiveProvider())
}

// TestDefaultSettings_Valid tests that defaults pass validation
func TestDefaultSettings_Valid(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())
}

// TestSettings_Validate tests rejection of inconsistent settings
func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero chunk size", func(s *Settings) { s.Chunking.ChunkTokens = 0 }},
		{"overlap >= chunk size", func(s *Settings) { s.Chunking.OverlapTokens = s.Chunking.ChunkTokens }},
		{"negative k1", func(s *Settings) { s.Scoring.K1 = -1 }},
		{"b out of range", func(s *Settings) { s.Scoring.B = 1.5 }},
		{"zero top-k", func(s *Settings) { s.Retrieval.TopK = 0 }},
		{"zero cache capacity", func(s *Settings) { s.Cache.Capacity = 0 }},
		{"zero burst", func(s *Settings) { s.RateLimit.Burst = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidInput)
		})
	}
}
