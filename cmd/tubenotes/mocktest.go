package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tubenotes/internal/bootstrap"
	"github.com/at-ishikawa/tubenotes/internal/cli"
	"github.com/at-ishikawa/tubenotes/internal/export"
	"github.com/at-ishikawa/tubenotes/internal/mocktest"
)

func newMockTestCommand() *cobra.Command {
	var exportYAML bool
	command := &cobra.Command{
		Use:   "mocktest <url>",
		Short: "Take an interactive multiple-choice mock test on a video",
		Args:  cobra.ExactArgs(1),
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
				ref, transcript, err := fetchTranscript(ctx, cfg.Captions, args[0], "")
				if err != nil {
					return err
				}

				test, err := generators.MockTests.Generate(ctx, mocktest.Request{
					Transcript: transcript,
					CacheKey:   ref.CacheKey(),
				})
				if err != nil {
					return fmt.Errorf("%s: %w", mocktest.ErrorMessage(err), err)
				}

				terminal := cli.NewInteractiveCLI(cmd.InOrStdin(), cmd.OutOrStdout())
				quiz := cli.NewMockTestCLI(terminal, test)
				if err := terminal.Run(ctx, quiz); err != nil {
					return err
				}

				if exportYAML {
					path := export.MockTestPath(cfg.Outputs.Directory, ref)
					if err := export.WriteMockTest(path, export.NewMockTestRecord(ref, test, quiz.Result(), time.Now())); err != nil {
						return fmt.Errorf("export.WriteMockTest > %w", err)
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Mock test exported to %s\n", path)
				}
				return nil
			})
		},
	}
	command.Flags().BoolVar(&exportYAML, "export", false, "write the mock test and the graded answers as YAML to the outputs directory")
	return command
}
