package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"earthreach/internal/application/port/input"
	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"
	"earthreach/internal/infrastructure/prompts"
	"earthreach/internal/usecase/xmltag"
)

var _ input.DescriptionGenerator = (*Generator)(nil)

type Config struct {
	SystemPrompt string
	// UserPrompt defaults to the embedded chart description prompt.
	UserPrompt  string
	Temperature *float32
	MaxTokens   int
}

type Generator struct {
	llm    output.LLMPort
	logger output.LoggerPort
	cfg    Config
}

func New(llm output.LLMPort, logger output.LoggerPort, cfg Config) *Generator {
	if strings.TrimSpace(cfg.UserPrompt) == "" {
		cfg.UserPrompt = prompts.GeneratorPrompt
	}
	return &Generator{
		llm:    llm,
		logger: logger.Named("generator"),
		cfg:    cfg,
	}
}

func (g *Generator) Generate(ctx context.Context, req input.GenerateRequest) (*entity.GeneratorOutput, error) {
	if err := req.Input.Validate(); err != nil {
		return nil, err
	}

	prompt := g.buildPrompt(req)

	var messages []entity.Message
	if g.cfg.SystemPrompt != "" {
		messages = append(messages, entity.SystemMessage(g.cfg.SystemPrompt))
	}
	messages = append(messages, entity.UserMessage(prompt, req.Input.Image))

	info := g.llm.Info()
	g.logger.Info("Generating description",
		"iteration", req.Iteration,
		"provider", info.Provider,
		"model", info.Model,
		"promptLen", len(prompt),
		"feedbackBlocks", len(req.Feedback),
		"dataSummaries", len(req.DataSummaries),
		"hasImage", true)

	start := time.Now()
	resp, err := g.llm.Chat(ctx, output.ChatRequest{
		Messages:    messages,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generator llm request failed: %w", err)
	}

	out, err := parseResponse(resp.Message.Content)
	if err != nil {
		return nil, err
	}
	out.Provider = info.Provider
	out.Model = info.Model
	out.Iteration = req.Iteration

	g.logger.Info("Description generated",
		"iteration", req.Iteration,
		"descriptionLen", len(out.Description),
		"analysisSteps", len(out.AnalysisSteps),
		"totalTokens", resp.Usage.Total(),
		"duration", time.Since(start).String())

	return out, nil
}

func (g *Generator) buildPrompt(req input.GenerateRequest) string {
	sections := []string{strings.TrimSpace(g.cfg.UserPrompt)}
	if figure := req.Input.Figure.PromptSection(); figure != "" {
		sections = append(sections, figure)
	}
	sections = append(sections, req.DataSummaries...)
	sections = append(sections, req.Feedback...)

	nonEmpty := sections[:0]
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

// parseResponse falls back to the whole response when <final_description> is absent,
// so custom prompts without tags still work.
func parseResponse(content string) (*entity.GeneratorOutput, error) {
	content = strings.TrimSpace(content)

	description, ok := xmltag.Extract(content, "final_description")
	if !ok {
		description = content
	}
	if description == "" {
		return nil, fmt.Errorf("%w: empty description", entity.ErrMalformedResponse)
	}

	return &entity.GeneratorOutput{
		Description:   description,
		AnalysisSteps: xmltag.Steps(content),
		Raw:           content,
	}, nil
}
