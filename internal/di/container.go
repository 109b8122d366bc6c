package di

import (
	"context"
	"fmt"
	"io"
	"strings"

	"earthreach/internal/application/port/input"
	"earthreach/internal/application/port/output"
	"earthreach/internal/application/service"
	"earthreach/internal/domain/entity"
	"earthreach/internal/infrastructure/grib"
	"earthreach/internal/infrastructure/imageio"
	"earthreach/internal/infrastructure/llm"
	"earthreach/internal/infrastructure/logger"
	"earthreach/internal/infrastructure/userinteraction"
	"earthreach/internal/usecase/evaluator"
	"earthreach/internal/usecase/extractor"
	"earthreach/internal/usecase/generator"
	"earthreach/internal/usecase/orchestrator"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Container struct {
	Logger     output.LoggerPort
	LLM        output.LLMPort
	Images     output.ImageLoader
	Fields     output.FieldSource
	Extractors output.ExtractorRegistry
	Generator  input.DescriptionGenerator
	Evaluator  input.DescriptionEvaluator
	Describer  input.ChartDescriber
}

type Config struct {
	Provider          string `validate:"omitempty,oneof=anthropic gemini groq local openai openrouter"`
	Model             string
	APIKey            string
	BaseURL           string `validate:"omitempty,url"`
	RequestsPerMinute int    `validate:"min=0"`
	HTTPDebug         bool

	LogLevel string `validate:"omitempty,oneof=debug info warn error"`
	LogDir   string
	// RunName names the log file, usually after the command.
	RunName string
	// Console receives log output and progress; defaults to stderr.
	Console io.Writer `validate:"-"`

	ImageMaxWidth int `validate:"min=0,max=8000"`

	SystemPrompt string
	UserPrompt   string
	Temperature  *float32 `validate:"omitempty,min=0,max=2"`
	MaxTokens    int      `validate:"min=0"`

	Criteria          []string `validate:"omitempty,dive,oneof=coherence fluency consistency relevance"`
	MaxIterations     int      `validate:"min=1,max=20"`
	CriteriaThreshold int      `validate:"min=0,max=5"`
	FeedbackTemplate  string
	ShowProgress      bool
}

func DefaultConfig() Config {
	return Config{
		Provider:          llm.DefaultProvider,
		LogLevel:          "info",
		ImageMaxWidth:     imageio.DefaultMaxWidth,
		MaxIterations:     orchestrator.DefaultMaxIterations,
		CriteriaThreshold: orchestrator.DefaultCriteriaThreshold,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies environment overrides.
// The API key is looked up for the configured provider; call LoadAPIKey again after changing it.
func ConfigFromEnv(env output.ConfigPort) Config {
	cfg := DefaultConfig()
	cfg.Provider = env.GetWithDefault("LLM_PROVIDER", cfg.Provider)
	cfg.Model = env.Get("LLM_MODEL")
	cfg.BaseURL = env.Get("LLM_BASE_URL")
	cfg.RequestsPerMinute = env.GetInt("LLM_REQUESTS_PER_MINUTE", 0)
	cfg.HTTPDebug = env.GetBool("LLM_HTTP_DEBUG", false)
	cfg.LogLevel = env.GetWithDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogDir = env.Get("LOG_DIR")
	cfg.ImageMaxWidth = env.GetInt("IMAGE_MAX_WIDTH", cfg.ImageMaxWidth)
	cfg.MaxIterations = env.GetInt("MAX_ITERATIONS", cfg.MaxIterations)
	cfg.CriteriaThreshold = env.GetInt("CRITERIA_THRESHOLD", cfg.CriteriaThreshold)
	cfg.MaxTokens = env.GetInt("LLM_MAX_TOKENS", cfg.MaxTokens)
	if env.Get("LLM_TEMPERATURE") != "" {
		// Unparsable values become -1 so Validate rejects them.
		t := float32(env.GetFloat("LLM_TEMPERATURE", -1))
		cfg.Temperature = &t
	}
	cfg.LoadAPIKey(env)
	return cfg
}

func (c *Config) LoadAPIKey(env output.ConfigPort) {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if key := llm.APIKeyEnv(c.Provider); key != "" {
		c.APIKey = env.Get(key)
	}
}

func (c Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: config: %v", entity.ErrInvalidInput, err)
	}
	return nil
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.NewZapLogger(logger.Config{
		Level:   cfg.LogLevel,
		Dir:     cfg.LogDir,
		RunName: cfg.RunName,
		Console: cfg.Console,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c, err := build(ctx, cfg, log)
	if err != nil {
		log.Close()
		return nil, err
	}
	return c, nil
}

func build(ctx context.Context, cfg Config, log output.LoggerPort) (*Container, error) {
	chat, err := llm.New(ctx, llm.Config{
		Provider:          cfg.Provider,
		Model:             cfg.Model,
		APIKey:            cfg.APIKey,
		BaseURL:           cfg.BaseURL,
		RequestsPerMinute: cfg.RequestsPerMinute,
		HTTPDebug:         cfg.HTTPDebug,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	registry := service.NewExtractorRegistry(log.Named("extractors"))
	if err := registerExtractors(registry); err != nil {
		return nil, err
	}

	gen := generator.New(chat, log, generator.Config{
		SystemPrompt: cfg.SystemPrompt,
		UserPrompt:   cfg.UserPrompt,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
	})

	var criteria []entity.Criterion
	if len(cfg.Criteria) > 0 {
		criteria, err = entity.ParseCriteria(cfg.Criteria)
		if err != nil {
			return nil, err
		}
	}
	eval, err := evaluator.New(chat, log, evaluator.Config{
		Criteria:    criteria,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluator: %w", err)
	}

	var reporter output.ProgressReporter = output.NopProgressReporter{}
	if cfg.ShowProgress {
		if cfg.Console != nil {
			reporter = userinteraction.NewConsoleProgressReporterTo(cfg.Console)
		} else {
			reporter = userinteraction.NewConsoleProgressReporter()
		}
	}

	describer, err := orchestrator.New(gen, eval, registry, reporter, log, orchestrator.Config{
		MaxIterations:     cfg.MaxIterations,
		CriteriaThreshold: cfg.CriteriaThreshold,
		FeedbackTemplate:  cfg.FeedbackTemplate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	return &Container{
		Logger:     log,
		LLM:        chat,
		Images:     imageio.NewLoader(cfg.ImageMaxWidth, log),
		Fields:     grib.NewReader(log),
		Extractors: registry,
		Generator:  gen,
		Evaluator:  eval,
		Describer:  describer,
	}, nil
}

func registerExtractors(registry *service.ExtractorRegistryImpl) error {
	pressure, err := extractor.NewPressureCenterExtractor(extractor.DefaultPressureOptions())
	if err != nil {
		return fmt.Errorf("failed to create pressure extractor: %w", err)
	}
	registry.Register(pressure)
	registry.Register(extractor.NewTemperatureExtractor())
	return nil
}

// LoadInput reads the chart image and, when gribPath is set, its fields.
func (c *Container) LoadInput(ctx context.Context, imagePath, gribPath string, figure entity.FigureMetadata) (entity.ChartInput, error) {
	img, err := c.Images.Load(ctx, imagePath)
	if err != nil {
		return entity.ChartInput{}, err
	}

	in := entity.ChartInput{Image: img, Figure: figure}
	if gribPath != "" {
		in.Fields, err = c.Fields.Read(ctx, gribPath)
		if err != nil {
			return entity.ChartInput{}, err
		}
	}
	return in, nil
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}
