package entity

import (
	"fmt"
	"strings"
)

type Criterion string

const (
	CriterionCoherence   Criterion = "coherence"
	CriterionFluency     Criterion = "fluency"
	CriterionConsistency Criterion = "consistency"
	CriterionRelevance   Criterion = "relevance"
)

const (
	MinScore = 0
	MaxScore = 5
)

func AllCriteria() []Criterion {
	return []Criterion{CriterionCoherence, CriterionFluency, CriterionConsistency, CriterionRelevance}
}

func (c Criterion) String() string {
	return string(c)
}

func ParseCriterion(s string) (Criterion, error) {
	c := Criterion(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllCriteria() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid: %s)", ErrUnsupportedCriterion, s, JoinCriteria(AllCriteria()))
}

// ParseCriteria rejects empty lists and duplicates so every criterion is scored exactly once.
func ParseCriteria(values []string) ([]Criterion, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: criteria list cannot be empty", ErrInvalidInput)
	}

	seen := make(map[Criterion]bool, len(values))
	result := make([]Criterion, 0, len(values))
	for _, v := range values {
		c, err := ParseCriterion(v)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: duplicate criterion %q", ErrInvalidInput, c)
		}
		seen[c] = true
		result = append(result, c)
	}
	return result, nil
}

func JoinCriteria(criteria []Criterion) string {
	names := make([]string, len(criteria))
	for i, c := range criteria {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

type CriterionEvaluatorOutput struct {
	Criterion Criterion `json:"criterion" validate:"required,oneof=coherence fluency consistency relevance"`
	Score     int       `json:"score"     validate:"min=0,max=5"`
	Reasoning string    `json:"reasoning,omitempty"`
}

func (o CriterionEvaluatorOutput) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %s score %d: %v", ErrMalformedResponse, o.Criterion, o.Score, err)
	}
	return nil
}

func (o CriterionEvaluatorOutput) Passes(threshold int) bool {
	return o.Score >= threshold
}

// AggregateScore is the weakest criterion score; an evaluation passes only if every criterion does.
func AggregateScore(evaluations []CriterionEvaluatorOutput) int {
	if len(evaluations) == 0 {
		return MinScore
	}
	lowest := evaluations[0].Score
	for _, e := range evaluations[1:] {
		if e.Score < lowest {
			lowest = e.Score
		}
	}
	return lowest
}

func UnmetCriteria(evaluations []CriterionEvaluatorOutput, threshold int) []CriterionEvaluatorOutput {
	var unmet []CriterionEvaluatorOutput
	for _, e := range evaluations {
		if !e.Passes(threshold) {
			unmet = append(unmet, e)
		}
	}
	return unmet
}
