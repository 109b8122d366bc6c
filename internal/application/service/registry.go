package service

import (
	"context"
	"sort"

	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"
)

var _ output.ExtractorRegistry = (*ExtractorRegistryImpl)(nil)

type ExtractorRegistryImpl struct {
	extractors map[string]output.DataExtractor
	logger     output.LoggerPort
}

func NewExtractorRegistry(logger output.LoggerPort) *ExtractorRegistryImpl {
	return &ExtractorRegistryImpl{
		extractors: make(map[string]output.DataExtractor),
		logger:     logger,
	}
}

func (r *ExtractorRegistryImpl) Register(extractor output.DataExtractor) {
	r.extractors[extractor.Variable()] = extractor
}

func (r *ExtractorRegistryImpl) Get(variable string) (output.DataExtractor, bool) {
	extractor, ok := r.extractors[variable]
	return extractor, ok
}

func (r *ExtractorRegistryImpl) All() []output.DataExtractor {
	variables := r.variables()
	result := make([]output.DataExtractor, 0, len(variables))
	for _, v := range variables {
		result = append(result, r.extractors[v])
	}
	return result
}

// Summaries runs every registered extractor whose variable is present in fields.
// A failing extractor is logged and skipped; the chart can still be described without it.
func (r *ExtractorRegistryImpl) Summaries(ctx context.Context, fields entity.FieldSet) []string {
	var summaries []string

	for _, variable := range r.variables() {
		if ctx.Err() != nil {
			break
		}

		field, ok := fields.Get(variable)
		if !ok {
			continue
		}

		extractor := r.extractors[variable]
		summary, err := extractor.Summarize(field)
		if err != nil {
			r.logger.Warn("Extractor failed, skipping", "extractor", extractor.Name(), "variable", variable, "error", err)
			continue
		}
		if summary == "" {
			continue
		}

		r.logger.Debug("Extractor summary ready", "extractor", extractor.Name(), "length", len(summary))
		summaries = append(summaries, summary)
	}

	return summaries
}

func (r *ExtractorRegistryImpl) variables() []string {
	result := make([]string, 0, len(r.extractors))
	for v := range r.extractors {
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}
