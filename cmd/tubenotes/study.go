package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tubenotes/internal/bootstrap"
	"github.com/at-ishikawa/tubenotes/internal/cli"
	"github.com/at-ishikawa/tubenotes/internal/pipeline"
)

func newStudyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "study",
		Short: "Interactive study session: load videos, read notes, take tests and ask the mentor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app := bootstrap.New()
			return app.Run(cmd.Context(), func(ctx context.Context) error {
				generators, err := app.NewGenerators(ctx, cfg)
				if err != nil {
					return err
				}
				study := pipeline.NewSession(
					bootstrap.NewFetcher(cfg.Captions),
					generators.Notes,
					generators.MockTests,
					cfg.Captions.Language,
				)

				studyCLI := cli.NewStudyCLI(cmd.InOrStdin(), cmd.OutOrStdout(), study, generators.NewMentorSession(), cfg.Outputs.Directory)
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Study session started. Type help for the list of commands.")
				return studyCLI.Run(ctx, studyCLI)
			})
		},
	}
}
