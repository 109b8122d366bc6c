package output

import (
	"context"

	"earthreach/internal/domain/entity"
)

type ProgressReporter interface {
	ShowIteration(ctx context.Context, iteration, maxIterations int)
	ShowGeneration(ctx context.Context, out *entity.GeneratorOutput)
	ShowEvaluation(ctx context.Context, evaluations []entity.CriterionEvaluatorOutput, threshold int)
	ShowVerdict(ctx context.Context, result *entity.OrchestrationResult)
}

type NopProgressReporter struct{}

func (NopProgressReporter) ShowIteration(context.Context, int, int)                                {}
func (NopProgressReporter) ShowGeneration(context.Context, *entity.GeneratorOutput)                {}
func (NopProgressReporter) ShowEvaluation(context.Context, []entity.CriterionEvaluatorOutput, int) {}
func (NopProgressReporter) ShowVerdict(context.Context, *entity.OrchestrationResult)               {}
