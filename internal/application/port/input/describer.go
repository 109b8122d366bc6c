package input

import (
	"context"

	"earthreach/internal/domain/entity"
)

type ChartDescriber interface {
	Describe(ctx context.Context, in entity.ChartInput) (*entity.OrchestrationResult, error)
}
