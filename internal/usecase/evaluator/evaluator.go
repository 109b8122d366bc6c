package evaluator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"earthreach/internal/application/port/input"
	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"
	"earthreach/internal/infrastructure/prompts"
	"earthreach/internal/usecase/xmltag"
)

var _ input.DescriptionEvaluator = (*Evaluator)(nil)

const closingInstruction = "Please provide your evaluation of the description against the criteria."

type Config struct {
	// Criteria defaults to every supported criterion.
	Criteria    []entity.Criterion
	Temperature *float32
	MaxTokens   int
}

type Evaluator struct {
	llm      output.LLMPort
	logger   output.LoggerPort
	criteria []entity.Criterion
	prompts  map[entity.Criterion]string
	cfg      Config
}

func New(llm output.LLMPort, logger output.LoggerPort, cfg Config) (*Evaluator, error) {
	criteria := cfg.Criteria
	if criteria == nil {
		criteria = entity.AllCriteria()
	}

	names := make([]string, len(criteria))
	for i, c := range criteria {
		names[i] = string(c)
	}
	criteria, err := entity.ParseCriteria(names)
	if err != nil {
		return nil, err
	}

	criterionPrompts := make(map[entity.Criterion]string, len(criteria))
	for _, c := range criteria {
		p, err := prompts.CriterionPrompt(c)
		if err != nil {
			return nil, err
		}
		criterionPrompts[c] = p
	}

	return &Evaluator{
		llm:      llm,
		logger:   logger.Named("evaluator"),
		criteria: criteria,
		prompts:  criterionPrompts,
		cfg:      cfg,
	}, nil
}

func (e *Evaluator) Criteria() []entity.Criterion {
	return append([]entity.Criterion(nil), e.criteria...)
}

// Evaluate scores the description once per criterion, in configured order.
func (e *Evaluator) Evaluate(ctx context.Context, req input.EvaluateRequest) ([]entity.CriterionEvaluatorOutput, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description to evaluate is empty", entity.ErrInvalidInput)
	}
	if err := req.Input.Validate(); err != nil {
		return nil, err
	}

	results := make([]entity.CriterionEvaluatorOutput, 0, len(e.criteria))
	for _, c := range e.criteria {
		result, err := e.evaluateCriterion(ctx, c, req)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", c, err)
		}
		results = append(results, *result)
	}

	return results, nil
}

func (e *Evaluator) evaluateCriterion(ctx context.Context, c entity.Criterion, req input.EvaluateRequest) (*entity.CriterionEvaluatorOutput, error) {
	prompt := e.buildPrompt(c, req)

	start := time.Now()
	resp, err := e.llm.Chat(ctx, output.ChatRequest{
		Messages:    []entity.Message{entity.UserMessage(prompt, req.Input.Image)},
		Temperature: e.cfg.Temperature,
		MaxTokens:   e.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluation llm request failed: %w", err)
	}

	result, err := parseEvaluationResponse(c, resp.Message.Content)
	if err != nil {
		e.logger.Warn("Failed to parse evaluation response", "criterion", c, "error", err, "responseLen", len(resp.Message.Content))
		return nil, err
	}

	e.logger.Info("Criterion evaluated",
		"criterion", c,
		"score", result.Score,
		"reasoningLen", len(result.Reasoning),
		"totalTokens", resp.Usage.Total(),
		"duration", time.Since(start).String())

	return result, nil
}

func (e *Evaluator) buildPrompt(c entity.Criterion, req input.EvaluateRequest) string {
	sections := []string{strings.TrimSpace(e.prompts[c])}
	if figure := req.Input.Figure.PromptSection(); figure != "" {
		sections = append(sections, figure)
	}
	for _, s := range req.DataSummaries {
		if strings.TrimSpace(s) != "" {
			sections = append(sections, s)
		}
	}
	sections = append(sections, "# Description to evaluate\n\n"+strings.TrimSpace(req.Description), closingInstruction)
	return strings.Join(sections, "\n\n")
}

func parseEvaluationResponse(c entity.Criterion, response string) (*entity.CriterionEvaluatorOutput, error) {
	rawScore, ok := xmltag.Extract(response, "score")
	if !ok {
		return nil, fmt.Errorf("%w: no <score> tag in response", entity.ErrMalformedResponse)
	}

	score, err := strconv.Atoi(rawScore)
	if err != nil {
		return nil, fmt.Errorf("%w: score %q is not an integer", entity.ErrMalformedResponse, rawScore)
	}

	reasoning, _ := xmltag.Extract(response, "reasoning")

	result := &entity.CriterionEvaluatorOutput{
		Criterion: c,
		Score:     score,
		Reasoning: reasoning,
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}
