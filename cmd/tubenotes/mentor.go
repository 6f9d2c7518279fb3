package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tubenotes/internal/bootstrap"
	"github.com/at-ishikawa/tubenotes/internal/cli"
	"github.com/at-ishikawa/tubenotes/internal/export"
	"github.com/at-ishikawa/tubenotes/internal/mentor"
	"github.com/at-ishikawa/tubenotes/internal/notecache"
	"github.com/at-ishikawa/tubenotes/internal/notes"
)

func newMentorCommand() *cobra.Command {
	var withNotes, exportYAML bool
	command := &cobra.Command{
		Use:   "mentor <url>",
		Short: "Chat with a mentor about a video",
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

				material := mentor.Material{Transcript: transcript}
				if withNotes {
					if document := generators.Notes.GenerateNotes(ctx, transcript, ref.CacheKey()); document != notes.FailureNotice {
						material.Notes = document
					}
				} else {
					material.Notes = cachedNotes(ctx, generators.Cache(), ref.CacheKey())
				}
				session := generators.NewMentorSession()
				session.Open(material)
				defer session.Close()

				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintln(out, "Ask the mentor anything about the video. Type /quit to leave.")
				terminal := cli.NewInteractiveCLI(cmd.InOrStdin(), out)
				if err := terminal.Run(ctx, cli.NewMentorCLI(terminal, session)); err != nil {
					return err
				}

				if exportYAML {
					path := export.MentorPath(cfg.Outputs.Directory, ref)
					record := export.MentorRecord{VideoRef: ref.String(), History: session.History()}
					if err := export.WriteMentorHistory(path, record); err != nil {
						return fmt.Errorf("export.WriteMentorHistory > %w", err)
					}
					_, _ = fmt.Fprintf(out, "Mentor chat exported to %s\n", path)
				}
				return nil
			})
		},
	}
	command.Flags().BoolVar(&withNotes, "with-notes", false, "generate notes when none are cached and share them with the mentor")
	command.Flags().BoolVar(&exportYAML, "export", false, "write the conversation as YAML to the outputs directory")
	return command
}

// cachedNotes returns notes already generated for the video without contacting the generation service.
func cachedNotes(ctx context.Context, cache notecache.Cache, cacheKey string) string {
	document, ok, err := cache.Get(ctx, cacheKey)
	if err != nil {
		slog.Default().Warn("Failed to read cached notes", "cacheKey", cacheKey, "error", err)
		return ""
	}
	if !ok || document == notes.FailureNotice {
		return ""
	}
	return document
}
