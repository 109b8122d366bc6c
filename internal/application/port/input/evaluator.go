package input

import (
	"context"

	"earthreach/internal/domain/entity"
)

type EvaluateRequest struct {
	Input         entity.ChartInput
	Description   string
	DataSummaries []string
}

type DescriptionEvaluator interface {
	Evaluate(ctx context.Context, req EvaluateRequest) ([]entity.CriterionEvaluatorOutput, error)
	Criteria() []entity.Criterion
}
