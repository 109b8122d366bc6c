package userinteraction

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"earthreach/internal/application/port/output"
	"earthreach/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ProgressReporter = (*ConsoleProgressReporter)(nil)

// ConsoleProgressReporter prints loop progress to stderr so stdout stays clean for results.
type ConsoleProgressReporter struct {
	out io.Writer
}

func NewConsoleProgressReporter() *ConsoleProgressReporter {
	return &ConsoleProgressReporter{out: os.Stderr}
}

func NewConsoleProgressReporterTo(w io.Writer) *ConsoleProgressReporter {
	return &ConsoleProgressReporter{out: w}
}

func (r *ConsoleProgressReporter) ShowIteration(ctx context.Context, iteration, maxIterations int) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(r.out, "\n━━━ Iteration %d/%d ━━━\n", iteration, maxIterations)
}

func (r *ConsoleProgressReporter) ShowGeneration(ctx context.Context, out *entity.GeneratorOutput) {
	if out == nil {
		return
	}

	blue := color.New(color.FgBlue)
	blue.Fprintf(r.out, "📝 Description generated by %s/%s", out.Provider, out.Model)

	dim := color.New(color.Faint)
	dim.Fprintf(r.out, " (%d words, %d analysis steps)\n", len(strings.Fields(out.Description)), len(out.AnalysisSteps))
	dim.Fprintf(r.out, "   %s\n", truncate(strings.Join(strings.Fields(out.Description), " "), 160))
}

func (r *ConsoleProgressReporter) ShowEvaluation(ctx context.Context, evaluations []entity.CriterionEvaluatorOutput, threshold int) {
	for _, e := range evaluations {
		if e.Passes(threshold) {
			green := color.New(color.FgGreen)
			green.Fprintf(r.out, "✓ %-12s %d/%d\n", e.Criterion, e.Score, entity.MaxScore)
			continue
		}

		red := color.New(color.FgRed)
		red.Fprintf(r.out, "✗ %-12s %d/%d", e.Criterion, e.Score, entity.MaxScore)
		if e.Reasoning != "" {
			dim := color.New(color.Faint)
			dim.Fprintf(r.out, "  %s", truncate(strings.Join(strings.Fields(e.Reasoning), " "), 120))
		}
		fmt.Fprintln(r.out)
	}
}

func (r *ConsoleProgressReporter) ShowVerdict(ctx context.Context, result *entity.OrchestrationResult) {
	if result == nil {
		return
	}

	if result.Passed {
		green := color.New(color.FgGreen, color.Bold)
		green.Fprintf(r.out, "\n✅ All criteria met after %d iteration(s)\n", result.Iterations)
		return
	}

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(r.out, "\n⚠️  Iteration cap reached after %d iteration(s); %d limitation(s) acknowledged\n",
		result.Iterations, len(result.Acknowledgments))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
