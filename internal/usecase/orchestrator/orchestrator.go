package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"earthreach/internal/application/port/input"
	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"
	"earthreach/internal/infrastructure/prompts"

	"github.com/google/uuid"
)

const (
	DefaultMaxIterations     = 3
	DefaultCriteriaThreshold = 4
)

var _ input.ChartDescriber = (*Orchestrator)(nil)

var limitAcknowledgments = map[entity.Criterion]string{
	entity.CriterionCoherence:   "Warning: The logical flow and organization of this description may be unclear.",
	entity.CriterionFluency:     "Warning: This description may contain linguistic issues, technical terminology errors, or unclear phrasing.",
	entity.CriterionConsistency: "Warning: This description may contain inaccuracies relative to the source chart or internal contradictions.",
	entity.CriterionRelevance:   "Warning: This description may not adequately emphasize the most meteorologically significant patterns.",
}

type Config struct {
	MaxIterations     int
	CriteriaThreshold int
	// FeedbackTemplate is a text/template; empty selects the embedded one.
	FeedbackTemplate string
}

func DefaultConfig() Config {
	return Config{
		MaxIterations:     DefaultMaxIterations,
		CriteriaThreshold: DefaultCriteriaThreshold,
	}
}

type Orchestrator struct {
	generator input.DescriptionGenerator
	evaluator input.DescriptionEvaluator
	registry  output.ExtractorRegistry
	reporter  output.ProgressReporter
	logger    output.LoggerPort
	feedback  *prompts.FeedbackRenderer
	cfg       Config
}

func New(
	generator input.DescriptionGenerator,
	evaluator input.DescriptionEvaluator,
	registry output.ExtractorRegistry,
	reporter output.ProgressReporter,
	logger output.LoggerPort,
	cfg Config,
) (*Orchestrator, error) {
	if cfg.MaxIterations < 1 {
		return nil, fmt.Errorf("%w: max iterations must be at least 1, got %d", entity.ErrInvalidInput, cfg.MaxIterations)
	}
	if cfg.CriteriaThreshold < entity.MinScore || cfg.CriteriaThreshold > entity.MaxScore {
		return nil, fmt.Errorf("%w: criteria threshold must be between %d and %d, got %d",
			entity.ErrInvalidInput, entity.MinScore, entity.MaxScore, cfg.CriteriaThreshold)
	}

	feedback, err := prompts.NewFeedbackRenderer(cfg.FeedbackTemplate)
	if err != nil {
		return nil, err
	}

	if reporter == nil {
		reporter = output.NopProgressReporter{}
	}

	return &Orchestrator{
		generator: generator,
		evaluator: evaluator,
		registry:  registry,
		reporter:  reporter,
		logger:    logger.Named("orchestrator"),
		feedback:  feedback,
		cfg:       cfg,
	}, nil
}

// Describe generates and evaluates until every criterion reaches the threshold or the iteration cap is hit.
func (o *Orchestrator) Describe(ctx context.Context, in entity.ChartInput) (*entity.OrchestrationResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &entity.OrchestrationResult{RunID: uuid.NewString()}
	log := o.logger.WithField("run_id", result.RunID)

	log.Info("Describing chart",
		"source", in.Image.Source,
		"fields", in.Fields.Names(),
		"maxIterations", o.cfg.MaxIterations,
		"threshold", o.cfg.CriteriaThreshold)

	var summaries []string
	if o.registry != nil && len(in.Fields) > 0 {
		summaries = o.registry.Summaries(ctx, in.Fields)
	}

	var feedback []string
	for iter := 1; iter <= o.cfg.MaxIterations; iter++ {
		o.reporter.ShowIteration(ctx, iter, o.cfg.MaxIterations)
		log.Debug("Orchestrator iteration", "iteration", iter)

		generation, err := o.generator.Generate(ctx, input.GenerateRequest{
			Input:         in,
			DataSummaries: summaries,
			Feedback:      feedback,
			Iteration:     iter,
		})
		if err != nil {
			return nil, fmt.Errorf("generate description (iteration %d): %w", iter, err)
		}
		o.reporter.ShowGeneration(ctx, generation)

		evaluations, err := o.evaluator.Evaluate(ctx, input.EvaluateRequest{
			Input:         in,
			Description:   generation.Description,
			DataSummaries: summaries,
		})
		if err != nil {
			return nil, fmt.Errorf("evaluate description (iteration %d): %w", iter, err)
		}
		o.reporter.ShowEvaluation(ctx, evaluations, o.cfg.CriteriaThreshold)

		unmet := entity.UnmetCriteria(evaluations, o.cfg.CriteriaThreshold)
		record := entity.IterationRecord{
			Iteration:      iter,
			Generation:     *generation,
			Evaluations:    evaluations,
			AggregateScore: entity.AggregateScore(evaluations),
			Passed:         len(unmet) == 0,
		}
		result.History = append(result.History, record)
		result.Iterations = iter

		log.Info("Iteration evaluated",
			"iteration", iter,
			"aggregateScore", record.AggregateScore,
			"passed", record.Passed,
			"unmet", len(unmet))

		if record.Passed {
			result.Description = generation.Description
			result.Passed = true
			return o.finish(ctx, log, result, start), nil
		}

		if iter == o.cfg.MaxIterations {
			result.Acknowledgments = acknowledgments(unmet)
			result.Description = withAcknowledgments(generation.Description, result.Acknowledgments)
			break
		}

		block, err := o.feedback.Render(prompts.FeedbackData{
			EvaluationID: iter,
			Unmet:        unmet,
			Description:  generation.Description,
		})
		if err != nil {
			return nil, err
		}
		feedback = append(feedback, block)
	}

	log.Warn("Iteration cap reached without passing evaluation", "iterations", result.Iterations)
	return o.finish(ctx, log, result, start), nil
}

func (o *Orchestrator) finish(ctx context.Context, log output.LoggerPort, result *entity.OrchestrationResult, start time.Time) *entity.OrchestrationResult {
	result.Duration = time.Since(start)
	o.reporter.ShowVerdict(ctx, result)
	log.Info("Chart description finished",
		"passed", result.Passed,
		"iterations", result.Iterations,
		"duration", result.Duration.String())
	return result
}

func acknowledgments(unmet []entity.CriterionEvaluatorOutput) []string {
	var result []string
	for _, e := range unmet {
		if text, ok := limitAcknowledgments[e.Criterion]; ok {
			result = append(result, text)
		}
	}
	return result
}

func withAcknowledgments(description string, acks []string) string {
	if len(acks) == 0 {
		return description
	}
	return description + "\n\n" + strings.Join(acks, "\n")
}
