package entity

import "time"

type IterationRecord struct {
	Iteration      int                        `json:"iteration"`
	Generation     GeneratorOutput            `json:"generation"`
	Evaluations    []CriterionEvaluatorOutput `json:"evaluations"`
	AggregateScore int                        `json:"aggregate_score"`
	Passed         bool                       `json:"passed"`
}

type OrchestrationResult struct {
	RunID           string            `json:"run_id"`
	Description     string            `json:"description"`
	History         []IterationRecord `json:"history"`
	Iterations      int               `json:"iterations"`
	Passed          bool              `json:"passed"`
	Acknowledgments []string          `json:"acknowledgments,omitempty"`
	Duration        time.Duration     `json:"duration"`
}

func (r *OrchestrationResult) LastIteration() (IterationRecord, bool) {
	if r == nil || len(r.History) == 0 {
		return IterationRecord{}, false
	}
	return r.History[len(r.History)-1], true
}
