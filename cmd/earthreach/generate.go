package main

import (
	"earthreach/internal/application/port/input"
	"earthreach/internal/di"
	"earthreach/internal/domain/entity"
	"earthreach/internal/infrastructure/imageio"

	"github.com/spf13/cobra"
)

type generateOptions struct {
	systemPrompt      string
	systemPromptFile  string
	userPrompt        string
	userPromptFile    string
	gribPath          string
	figure            entity.FigureMetadata
	simple            bool
	maxIterations     int
	criteriaThreshold int
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate IMAGE",
		Short: "Describe a weather chart, refining until the evaluation criteria pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.systemPrompt, "system-prompt", "", "system prompt text")
	f.StringVar(&opts.systemPromptFile, "system-prompt-file", "", "file containing the system prompt")
	f.StringVar(&opts.userPrompt, "user-prompt", "", "user prompt text, replaces the built-in chart prompt")
	f.StringVar(&opts.userPromptFile, "user-prompt-file", "", "file containing the user prompt")
	f.StringVar(&opts.gribPath, "grib", "", "GRIB2 file with the fields behind the chart (msl, 2t)")
	f.StringVar(&opts.figure.Title, "title", "", "figure title")
	f.StringVar(&opts.figure.XLabel, "xlabel", "", "x axis label")
	f.StringVar(&opts.figure.YLabel, "ylabel", "", "y axis label")
	f.StringVar(&opts.figure.Domain, "domain", "", "geographic domain of the figure")
	f.BoolVar(&opts.simple, "simple", false, "generate once without evaluation")
	f.IntVar(&opts.maxIterations, "max-iterations", 0, "refinement iterations before giving up (env MAX_ITERATIONS, default 3)")
	f.IntVar(&opts.criteriaThreshold, "criteria-threshold", 0, "minimum score every criterion must reach (env CRITERIA_THRESHOLD, default 4)")

	cmd.MarkFlagsMutuallyExclusive("system-prompt", "system-prompt-file")
	cmd.MarkFlagsMutuallyExclusive("user-prompt", "user-prompt-file")
	cmd.MarkFlagsMutuallyExclusive("simple", "max-iterations")
	cmd.MarkFlagsMutuallyExclusive("simple", "criteria-threshold")
	return cmd
}

func (o *generateOptions) apply(cmd *cobra.Command, cfg *di.Config) error {
	var err error
	cfg.SystemPrompt, err = resolveText("system prompt", o.systemPrompt, o.systemPromptFile,
		flagsChanged(cmd, "system-prompt", "system-prompt-file"), false)
	if err != nil {
		return err
	}
	cfg.UserPrompt, err = resolveText("user prompt", o.userPrompt, o.userPromptFile,
		flagsChanged(cmd, "user-prompt", "user-prompt-file"), false)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("max-iterations") {
		cfg.MaxIterations = o.maxIterations
	}
	if cmd.Flags().Changed("criteria-threshold") {
		cfg.CriteriaThreshold = o.criteriaThreshold
	}
	return cfg.Validate()
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions, imagePath string) error {
	if err := imageio.ValidateExtension(imagePath); err != nil {
		return err
	}

	cfg := root.config("generate")
	if err := opts.apply(cmd, &cfg); err != nil {
		return err
	}
	cfg.ShowProgress = !root.jsonOut && !opts.simple
	cfg.Console = cmd.ErrOrStderr()

	ctx, cancel := root.commandContext(cmd)
	defer cancel()

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	in, err := container.LoadInput(ctx, imagePath, opts.gribPath, opts.figure)
	if err != nil {
		return err
	}

	if opts.simple {
		out, err := container.Generator.Generate(ctx, input.GenerateRequest{
			Input:         in,
			DataSummaries: container.Extractors.Summaries(ctx, in.Fields),
			Iteration:     1,
		})
		if err != nil {
			return err
		}
		return printGeneration(cmd.OutOrStdout(), out, root.jsonOut)
	}

	result, err := container.Describer.Describe(ctx, in)
	if err != nil {
		return err
	}
	return printOrchestration(cmd.OutOrStdout(), result, root.jsonOut)
}
