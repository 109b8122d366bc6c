package llm

import (
	"context"
	"testing"

	"earthreach/internal/domain/entity"
	"earthreach/internal/infrastructure/llm/claude"
	"earthreach/internal/infrastructure/llm/openaicompat"
	"earthreach/internal/infrastructure/llm/ratelimit"
	"earthreach/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve(Config{APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, ProviderGroq, cfg.Provider)
	assert.Equal(t, "meta-llama/llama-4-maverick-17b-128e-instruct", cfg.Model)
	assert.Equal(t, openaicompat.BaseURLGroq, cfg.BaseURL)
}

func TestResolve_ExplicitModelWins(t *testing.T) {
	cfg, err := Resolve(Config{Provider: " Gemini ", Model: "gemini-2.5-pro", APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
}

func TestResolve_Errors(t *testing.T) {
	_, err := Resolve(Config{Provider: "watson", APIKey: "k"})
	assert.ErrorIs(t, err, entity.ErrUnsupportedProvider)

	_, err = Resolve(Config{Provider: ProviderOpenAI})
	require.ErrorIs(t, err, entity.ErrMissingAPIKey)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	_, err = Resolve(Config{Provider: ProviderLocal, Model: "llava"})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestResolve_LocalWithoutKey(t *testing.T) {
	cfg, err := Resolve(Config{Provider: ProviderLocal, Model: "llava", BaseURL: "http://localhost:11434/v1"})
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.APIKey)
}

func TestNew_SelectsAdapter(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	port, err := New(ctx, Config{Provider: ProviderAnthropic, APIKey: "k"}, log)
	require.NoError(t, err)
	assert.IsType(t, &claude.Adapter{}, port)
	assert.Equal(t, "anthropic/claude-sonnet-4-5", port.Info().String())

	port, err = New(ctx, Config{Provider: ProviderOpenRouter, APIKey: "k"}, log)
	require.NoError(t, err)
	assert.IsType(t, &openaicompat.Adapter{}, port)

	port, err = New(ctx, Config{Provider: ProviderOpenAI, APIKey: "k", RequestsPerMinute: 30}, log)
	require.NoError(t, err)
	assert.IsType(t, &ratelimit.Limited{}, port)
	assert.Equal(t, "openai/o4-mini", port.Info().String())
}

func TestAPIKeyEnv(t *testing.T) {
	assert.Equal(t, "GROQ_API_KEY", APIKeyEnv(ProviderGroq))
	assert.Equal(t, "", APIKeyEnv("unknown"))
}
