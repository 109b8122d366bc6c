package input

import (
	"context"

	"earthreach/internal/domain/entity"
)

type GenerateRequest struct {
	Input         entity.ChartInput
	DataSummaries []string
	Feedback      []string
	Iteration     int
}

type DescriptionGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*entity.GeneratorOutput, error)
}
