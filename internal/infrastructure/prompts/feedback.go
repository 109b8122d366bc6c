package prompts

import (
	"bytes"
	"fmt"
	"text/template"

	"earthreach/internal/domain/entity"
)

type FeedbackData struct {
	EvaluationID int
	MaxScore     int
	Unmet        []entity.CriterionEvaluatorOutput
	Description  string
}

// FeedbackRenderer is a parsed feedback template, safe to reuse across iterations.
type FeedbackRenderer struct {
	tmpl *template.Template
}

func NewFeedbackRenderer(baseTemplate string) (*FeedbackRenderer, error) {
	if baseTemplate == "" {
		baseTemplate = FeedbackTemplate
	}

	tmpl, err := template.New("feedback").Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse feedback template: %w", err)
	}
	return &FeedbackRenderer{tmpl: tmpl}, nil
}

func (r *FeedbackRenderer) Render(data FeedbackData) (string, error) {
	if data.MaxScore == 0 {
		data.MaxScore = entity.MaxScore
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render feedback: %w", err)
	}
	return buf.String(), nil
}
