package output

import (
	"context"

	"earthreach/internal/domain/entity"
)

// DataExtractor turns one gridded variable into a short prompt-ready summary.
type DataExtractor interface {
	Name() string
	Variable() string
	Summarize(field entity.Field) (string, error)
}

type ExtractorRegistry interface {
	Register(extractor DataExtractor)
	Get(variable string) (DataExtractor, bool)
	All() []DataExtractor
	Summaries(ctx context.Context, fields entity.FieldSet) []string
}
