package cmd

import (
	"context"
	_ "embed"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"surveyflow/internal/app"
	"surveyflow/internal/config"
	"surveyflow/internal/model"
	"surveyflow/internal/service"
	"surveyflow/internal/surveyfile"
)

//go:embed sample_survey.yaml
var sampleSurvey []byte

// NewSeedCommand creates and returns the seed subcommand
func NewSeedCommand() *cobra.Command {
	var (
		file  string
		draft bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store a survey in the configured database",
		Long: `Create a survey owned by the configured author and publish it.

Connection settings come from the same environment variables as the
server (MONGO_URI, MONGO_DB, REDIS_URI, AUTHOR_USERNAME). Without
--file a built-in sample survey is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			survey, err := loadSeed(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := app.New(ctx, config.Load())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			_, err = seedSurvey(ctx, a, survey, !draft, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "survey file (JSON or YAML)")
	cmd.Flags().BoolVar(&draft, "draft", false, "store without publishing")
	return cmd
}

func loadSeed(file string) (*model.Survey, error) {
	if file == "" {
		return surveyfile.Parse(sampleSurvey, surveyfile.FormatYAML)
	}
	return surveyfile.Load(file)
}

// seedSurvey creates the survey and optionally publishes it. A survey
// with lint issues is stored as a draft and reported as an error.
func seedSurvey(ctx context.Context, a *app.App, s *model.Survey, publish bool, out io.Writer) (*model.Survey, error) {
	authorID := service.AuthorID(a.Config.AuthorUsername)
	res, err := a.SurveyService.Create(ctx, authorID, service.SurveyInput{
		Name:        s.Name,
		Description: s.Description,
		Settings:    s.Settings,
		Questions:   s.Questions,
	})
	if err != nil {
		return nil, err
	}
	green := color.New(color.FgGreen)
	green.Fprintf(out, "✓ created survey %s %q for author %s\n", res.Survey.ID, res.Survey.Name, authorID)

	if !publish {
		return res.Survey, nil
	}
	published, err := a.SurveyService.Publish(ctx, authorID, res.Survey.ID)
	if err != nil {
		return res.Survey, fmt.Errorf("survey %s stored as draft: %w", res.Survey.ID, err)
	}
	green.Fprintf(out, "✓ published version %d\n", published.Version)
	return &published.Survey, nil
}
