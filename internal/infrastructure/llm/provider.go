package llm

import (
	"context"
	"fmt"
	"strings"

	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"
	"earthreach/internal/infrastructure/llm/claude"
	"earthreach/internal/infrastructure/llm/gemini"
	"earthreach/internal/infrastructure/llm/openaicompat"
	"earthreach/internal/infrastructure/llm/ratelimit"
)

const (
	ProviderOpenAI     = "openai"
	ProviderGroq       = "groq"
	ProviderOpenRouter = "openrouter"
	ProviderLocal      = "local"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"

	DefaultProvider = ProviderGroq
)

type providerSpec struct {
	apiKeyEnv    string
	defaultModel string
	baseURL      string
}

var providers = map[string]providerSpec{
	ProviderOpenAI:     {apiKeyEnv: "OPENAI_API_KEY", defaultModel: "o4-mini"},
	ProviderGroq:       {apiKeyEnv: "GROQ_API_KEY", defaultModel: "meta-llama/llama-4-maverick-17b-128e-instruct", baseURL: openaicompat.BaseURLGroq},
	ProviderOpenRouter: {apiKeyEnv: "OPENROUTER_API_KEY", defaultModel: "openai/gpt-4o-mini", baseURL: openaicompat.BaseURLOpenRouter},
	ProviderLocal:      {apiKeyEnv: "LOCAL_API_KEY"},
	ProviderAnthropic:  {apiKeyEnv: "ANTHROPIC_API_KEY", defaultModel: "claude-sonnet-4-5"},
	ProviderGemini:     {apiKeyEnv: "GEMINI_API_KEY", defaultModel: "gemini-2.5-flash"},
}

func Providers() []string {
	return []string{ProviderAnthropic, ProviderGemini, ProviderGroq, ProviderLocal, ProviderOpenAI, ProviderOpenRouter}
}

// APIKeyEnv names the environment variable holding the key for provider.
func APIKeyEnv(provider string) string {
	return providers[provider].apiKeyEnv
}

type Config struct {
	Provider          string
	Model             string
	APIKey            string
	BaseURL           string
	RequestsPerMinute int
	HTTPDebug         bool
}

// Resolve fills the model and base URL defaults and checks the key is present.
func Resolve(cfg Config) (Config, error) {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}

	spec, ok := providers[cfg.Provider]
	if !ok {
		return cfg, fmt.Errorf("%w: %q (valid: %s)", entity.ErrUnsupportedProvider, cfg.Provider, strings.Join(Providers(), ", "))
	}

	if cfg.Model == "" {
		cfg.Model = spec.defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = spec.baseURL
	}

	switch cfg.Provider {
	case ProviderLocal:
		if cfg.BaseURL == "" {
			return cfg, fmt.Errorf("%w: provider %q requires LLM_BASE_URL", entity.ErrInvalidInput, cfg.Provider)
		}
		if cfg.Model == "" {
			return cfg, fmt.Errorf("%w: provider %q requires LLM_MODEL", entity.ErrInvalidInput, cfg.Provider)
		}
		if cfg.APIKey == "" {
			// Most local servers ignore the key but the client insists on one.
			cfg.APIKey = "not-needed"
		}
	default:
		if cfg.APIKey == "" {
			return cfg, fmt.Errorf("%w: set %s for provider %q", entity.ErrMissingAPIKey, spec.apiKeyEnv, cfg.Provider)
		}
	}

	return cfg, nil
}

// New builds the adapter for cfg.Provider, wrapped with the rate limiter when configured.
func New(ctx context.Context, cfg Config, logger output.LoggerPort) (output.LLMPort, error) {
	cfg, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.Named("llm").WithFields(map[string]any{"provider": cfg.Provider, "model": cfg.Model})

	var port output.LLMPort
	switch cfg.Provider {
	case ProviderAnthropic:
		port = claude.NewAdapter(claude.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Logger:  log,
		})
	case ProviderGemini:
		port, err = gemini.NewAdapter(ctx, gemini.Config{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
			Logger: log,
		})
		if err != nil {
			return nil, err
		}
	default:
		port = openaicompat.NewAdapter(openaicompat.Config{
			Provider:            cfg.Provider,
			APIKey:              cfg.APIKey,
			Model:               cfg.Model,
			BaseURL:             cfg.BaseURL,
			MaxCompletionTokens: cfg.Provider == ProviderOpenAI,
			HTTPDebug:           cfg.HTTPDebug,
			Logger:              log,
		})
	}

	log.Debug("LLM provider ready", "rpm", cfg.RequestsPerMinute)
	return ratelimit.Wrap(port, cfg.RequestsPerMinute, log), nil
}
