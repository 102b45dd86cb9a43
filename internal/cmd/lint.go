package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"surveyflow/internal/flow"
	"surveyflow/internal/surveyfile"
)

// NewLintCommand creates and returns the lint subcommand
func NewLintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <survey-file>...",
		Short: "Check survey files for logic and schema errors",
		Long: `Parse each survey file and report every issue that would block
publishing: dangling or backward jump targets, operators that do not
fit the source question type, unknown option ids and duplicate ids.

Exit code: 0 if every file is clean, 1 otherwise`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return lintFiles(args, cmd.OutOrStdout())
		},
	}
	return cmd
}

func lintFiles(paths []string, out io.Writer) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	var total int
	for _, path := range paths {
		survey, err := surveyfile.Load(path)
		if err != nil {
			red.Fprintf(out, "✗ %v\n", err)
			total++
			continue
		}

		issues := flow.Lint(survey.Questions)
		if len(issues) == 0 {
			green.Fprintf(out, "✓ %s: %d questions, no issues\n", path, len(survey.Questions))
			continue
		}
		red.Fprintf(out, "✗ %s: %d issue(s)\n", path, len(issues))
		for _, issue := range issues {
			yellow.Fprintf(out, "  %s", issue.Kind)
			fmt.Fprintf(out, " %s\n", issueLocation(issue)+issue.Message)
		}
		total += len(issues)
	}

	if total > 0 {
		return fmt.Errorf("%d issue(s) found", total)
	}
	return nil
}

func issueLocation(i flow.Issue) string {
	switch {
	case i.QuestionID == "":
		return ""
	case i.Rule < 0:
		return i.QuestionID + ": "
	case i.Condition < 0:
		return fmt.Sprintf("%s rule %d: ", i.QuestionID, i.Rule)
	}
	return fmt.Sprintf("%s rule %d condition %d: ", i.QuestionID, i.Rule, i.Condition)
}
