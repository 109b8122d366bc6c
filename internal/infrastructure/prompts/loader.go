package prompts

import (
	"embed"
	"fmt"

	"earthreach/internal/domain/entity"
)

//go:embed generator.txt
var GeneratorPrompt string

//go:embed feedback.tmpl
var FeedbackTemplate string

//go:embed criteria/*.txt
var criteriaFS embed.FS

// CriterionPrompt returns the embedded evaluation instructions for c.
func CriterionPrompt(c entity.Criterion) (string, error) {
	data, err := criteriaFS.ReadFile("criteria/" + string(c) + ".txt")
	if err != nil {
		return "", fmt.Errorf("%w: no prompt for %q", entity.ErrUnsupportedCriterion, c)
	}
	return string(data), nil
}
