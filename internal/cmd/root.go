package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for surveyctl
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surveyctl",
		Short: "Author-side tooling for branching surveys",
		Long: `surveyctl works on survey definition files (JSON or YAML).

It lints the branching rules, prints the flow graph, simulates a
respondent walking the survey with a fixed set of answers and seeds
a running deployment with a published survey.`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewLintCommand())
	cmd.AddCommand(NewGraphCommand())
	cmd.AddCommand(NewWalkCommand())
	cmd.AddCommand(NewSeedCommand())

	return cmd
}
