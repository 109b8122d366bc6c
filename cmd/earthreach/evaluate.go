package main

import (
	"earthreach/internal/application/port/input"
	"earthreach/internal/di"
	"earthreach/internal/domain/entity"
	"earthreach/internal/infrastructure/imageio"
	"earthreach/internal/usecase/orchestrator"

	"github.com/spf13/cobra"
)

type evaluateOptions struct {
	description     string
	descriptionFile string
	criteria        []string
	gribPath        string
	figure          entity.FigureMetadata
}

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate IMAGE",
		Short: "Score an existing chart description against the evaluation criteria",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, root, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.description, "description", "", "description text to evaluate")
	f.StringVar(&opts.descriptionFile, "description-file", "", "file containing the description")
	f.StringSliceVar(&opts.criteria, "criteria", nil, "comma-separated criteria to score (default all)")
	f.StringVar(&opts.gribPath, "grib", "", "GRIB2 file with the fields behind the chart (msl, 2t)")
	f.StringVar(&opts.figure.Title, "title", "", "figure title")
	f.StringVar(&opts.figure.XLabel, "xlabel", "", "x axis label")
	f.StringVar(&opts.figure.YLabel, "ylabel", "", "y axis label")
	f.StringVar(&opts.figure.Domain, "domain", "", "geographic domain of the figure")

	cmd.MarkFlagsMutuallyExclusive("description", "description-file")
	cmd.MarkFlagsOneRequired("description", "description-file")
	return cmd
}

func (o *evaluateOptions) apply(cmd *cobra.Command, cfg *di.Config) (string, error) {
	description, err := resolveText("description", o.description, o.descriptionFile,
		flagsChanged(cmd, "description", "description-file"), true)
	if err != nil {
		return "", err
	}

	if cmd.Flags().Changed("criteria") {
		criteria, err := entity.ParseCriteria(o.criteria)
		if err != nil {
			return "", err
		}
		cfg.Criteria = make([]string, len(criteria))
		for i, c := range criteria {
			cfg.Criteria[i] = c.String()
		}
	}
	// The refinement loop is not run here; its iteration cap from the environment does not apply.
	cfg.MaxIterations = orchestrator.DefaultMaxIterations
	return description, cfg.Validate()
}

func runEvaluate(cmd *cobra.Command, root *rootOptions, opts *evaluateOptions, imagePath string) error {
	if err := imageio.ValidateExtension(imagePath); err != nil {
		return err
	}

	cfg := root.config("evaluate")
	description, err := opts.apply(cmd, &cfg)
	if err != nil {
		return err
	}
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

	evaluations, err := container.Evaluator.Evaluate(ctx, input.EvaluateRequest{
		Input:         in,
		Description:   description,
		DataSummaries: container.Extractors.Summaries(ctx, in.Fields),
	})
	if err != nil {
		return err
	}
	return printEvaluations(cmd.OutOrStdout(), evaluations, cfg.CriteriaThreshold, root.jsonOut)
}
