package output

import (
	"context"

	"earthreach/internal/domain/entity"
)

type FieldSource interface {
	Read(ctx context.Context, path string) (entity.FieldSet, error)
}

type ImageLoader interface {
	Load(ctx context.Context, path string) (entity.ChartImage, error)
}
