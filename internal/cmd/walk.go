package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"surveyflow/internal/flow"
	"surveyflow/internal/model"
	"surveyflow/internal/surveyfile"
)

// NewWalkCommand creates and returns the walk subcommand
func NewWalkCommand() *cobra.Command {
	var (
		answers []string
		lenient bool
	)

	cmd := &cobra.Command{
		Use:   "walk <survey-file>",
		Short: "Simulate a respondent answering the survey",
		Long: `Walk a survey from the first question to completion using fixed
answers, printing every question visited and the rule that moved the
respondent on.

Answers are given as QUESTION=VALUE. VALUE is read as JSON when it
parses (5, ["a","b"], {"email":"x@y.z"}) and as plain text otherwise.

Examples:
  surveyctl walk plans.yaml --answer Q1=pro --answer Q3=9
  surveyctl walk plans.yaml -a Q1=free -a 'Q2=More seats'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			survey, err := surveyfile.Load(args[0])
			if err != nil {
				return err
			}
			given, err := parseAnswers(answers)
			if err != nil {
				return err
			}
			_, err = walk(survey, given, !lenient, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&answers, "answer", "a", nil, "answer as QUESTION=VALUE (repeatable)")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "allow leaving required questions unanswered")
	return cmd
}

func parseAnswers(pairs []string) (model.AnswerStore, error) {
	store := model.AnswerStore{}
	for _, pair := range pairs {
		id, raw, ok := strings.Cut(pair, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid answer %q, expected QUESTION=VALUE", pair)
		}
		var v model.Value
		if err := json.Unmarshal([]byte(raw), &v); err != nil || v.IsZero() {
			v = model.Text(raw)
		}
		store.Set(id, v)
	}
	return store, nil
}

// walk runs the engine until completion and returns the visited path
func walk(survey *model.Survey, given model.AnswerStore, strict bool, out io.Writer) ([]string, error) {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	faint := color.New(color.Faint)

	cursor, err := flow.Start(survey.Questions)
	if err != nil {
		return nil, err
	}

	answers := model.AnswerStore{}
	// Backward jumps are followed at runtime so a linted-out loop could spin
	limit := len(survey.Questions) * (len(survey.Questions) + 1)
	for steps := 0; !cursor.Complete; steps++ {
		if steps > limit {
			return cursor.Path(), fmt.Errorf("walk did not finish after %d steps, the rules loop", limit)
		}
		q, _ := survey.Question(cursor.Current)
		cyan.Fprintf(out, "%s", q.ID)
		fmt.Fprintf(out, " [%s] %s\n", q.Type, q.Label)

		if v, ok := given.Get(q.ID); ok {
			if err := flow.CheckAnswer(q, v); err != nil {
				return cursor.Path(), err
			}
			answers.Set(q.ID, v)
			fmt.Fprintf(out, "  = %s\n", v)
		}

		next, err := flow.Advance(cursor, survey.Questions, answers, strict)
		if err != nil {
			return cursor.Path(), err
		}
		if r := flow.FiredRule(q, survey.Questions, answers); r >= 0 {
			faint.Fprintf(out, "  when %s\n", flow.RuleLabel(q.Logic[r], q.ID))
		}
		cursor = next
	}

	path := cursor.Path()
	green.Fprintf(out, "✓ completed: %s\n", strings.Join(path, " -> "))
	return path, nil
}
