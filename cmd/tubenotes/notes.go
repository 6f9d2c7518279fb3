package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tubenotes/internal/bootstrap"
	"github.com/at-ishikawa/tubenotes/internal/export"
	"github.com/at-ishikawa/tubenotes/internal/notes"
)

var errNotesFailed = errors.New("notes generation failed")

func newNotesCommand() *cobra.Command {
	var exportPDF bool
	command := &cobra.Command{
		Use:   "notes <url>",
		Short: "Generate study notes for a video",
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

				document := generators.Notes.GenerateNotes(ctx, transcript, ref.CacheKey())
				if document == notes.FailureNotice {
					return fmt.Errorf("%s: %w", document, errNotesFailed)
				}

				out := cmd.OutOrStdout()
				bold := color.New(color.Bold)
				for _, section := range notes.Sections(document) {
					_, _ = bold.Fprintln(out, section.Title)
					_, _ = fmt.Fprintf(out, "%s\n\n", section.Body)
				}

				if exportPDF {
					path, err := export.NotesToPDF(document, export.NotesPath(cfg.Outputs.Directory, ref))
					if err != nil {
						return fmt.Errorf("export.NotesToPDF > %w", err)
					}
					_, _ = fmt.Fprintf(out, "Notes exported to %s\n", path)
				}
				return nil
			})
		},
	}
	command.Flags().BoolVar(&exportPDF, "pdf", false, "also write the notes as a PDF to the outputs directory")
	return command
}
