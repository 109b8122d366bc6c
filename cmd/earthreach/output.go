package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"earthreach/internal/domain/entity"

	"github.com/fatih/color"
)

var (
	passed = color.New(color.FgGreen, color.Bold).SprintFunc()
	failed = color.New(color.FgRed, color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printGeneration(w io.Writer, out *entity.GeneratorOutput, jsonOut bool) error {
	if jsonOut {
		return writeJSON(w, out)
	}

	for i, step := range out.AnalysisSteps {
		fmt.Fprintf(w, "%s\n", dim(fmt.Sprintf("Step %d: %s", i+1, step)))
	}
	if len(out.AnalysisSteps) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, out.Description)
	return nil
}

func printOrchestration(w io.Writer, result *entity.OrchestrationResult, jsonOut bool) error {
	if jsonOut {
		return writeJSON(w, result)
	}

	fmt.Fprintln(w, result.Description)
	fmt.Fprintln(w)

	verdict := failed("criteria not met")
	if result.Passed {
		verdict = passed("all criteria met")
	}
	fmt.Fprintf(w, "%s after %d iteration(s) %s\n", verdict, result.Iterations, dim("run "+result.RunID))

	if last, ok := result.LastIteration(); ok {
		for _, e := range last.Evaluations {
			fmt.Fprintf(w, "  %-12s %d/%d\n", e.Criterion, e.Score, entity.MaxScore)
		}
	}
	return nil
}

type evaluationReport struct {
	Evaluations    []entity.CriterionEvaluatorOutput `json:"evaluations"`
	AggregateScore int                               `json:"aggregate_score"`
	Threshold      int                               `json:"threshold"`
	Passed         bool                              `json:"passed"`
}

func printEvaluations(w io.Writer, evaluations []entity.CriterionEvaluatorOutput, threshold int, jsonOut bool) error {
	report := evaluationReport{
		Evaluations:    evaluations,
		AggregateScore: entity.AggregateScore(evaluations),
		Threshold:      threshold,
		Passed:         len(entity.UnmetCriteria(evaluations, threshold)) == 0,
	}
	if jsonOut {
		return writeJSON(w, report)
	}

	for _, e := range evaluations {
		mark := passed("PASS")
		if !e.Passes(threshold) {
			mark = failed("FAIL")
		}
		fmt.Fprintf(w, "%s %-12s %d/%d\n", mark, e.Criterion, e.Score, entity.MaxScore)
		if e.Reasoning != "" {
			fmt.Fprintf(w, "     %s\n", strings.ReplaceAll(e.Reasoning, "\n", "\n     "))
		}
	}
	fmt.Fprintf(w, "\nAggregate score: %d/%d (threshold %d)\n", report.AggregateScore, entity.MaxScore, threshold)
	return nil
}

func printCriteria(w io.Writer, criteria []entity.Criterion, jsonOut bool) error {
	if jsonOut {
		type item struct {
			Name        entity.Criterion `json:"name"`
			Description string           `json:"description"`
		}
		items := make([]item, len(criteria))
		for i, c := range criteria {
			items[i] = item{Name: c, Description: criterionDescriptions[c]}
		}
		return writeJSON(w, items)
	}

	for _, c := range criteria {
		fmt.Fprintf(w, "%-12s %s\n", c, criterionDescriptions[c])
	}
	return nil
}
