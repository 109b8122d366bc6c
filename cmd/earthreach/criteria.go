package main

import (
	"earthreach/internal/domain/entity"

	"github.com/spf13/cobra"
)

var criterionDescriptions = map[entity.Criterion]string{
	entity.CriterionCoherence:   "overall structure and logical flow of the description",
	entity.CriterionFluency:     "grammar and readability",
	entity.CriterionConsistency: "factual agreement with the chart and its data",
	entity.CriterionRelevance:   "focus on the meteorologically important features",
}

func newCriteriaCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "criteria",
		Short: "List the supported evaluation criteria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printCriteria(cmd.OutOrStdout(), entity.AllCriteria(), root.jsonOut)
		},
	}
}
