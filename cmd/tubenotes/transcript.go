package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tubenotes/internal/bootstrap"
	"github.com/at-ishikawa/tubenotes/internal/config"
	"github.com/at-ishikawa/tubenotes/internal/videoref"
)

func newTranscriptCommand() *cobra.Command {
	var lang string
	command := &cobra.Command{
		Use:   "transcript <url>",
		Short: "Print the caption transcript of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app := bootstrap.New()
			return app.Run(cmd.Context(), func(ctx context.Context) error {
				_, transcript, err := fetchTranscript(ctx, cfg.Captions, args[0], lang)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), transcript)
				return nil
			})
		},
	}
	command.Flags().StringVar(&lang, "lang", "", "caption language, defaults to captions.language")
	return command
}

// fetchTranscript resolves url and fetches its transcript in lang, or the configured language when empty.
func fetchTranscript(ctx context.Context, cfg config.CaptionsConfig, url, lang string) (videoref.VideoRef, string, error) {
	ref, err := videoref.Resolve(url)
	if err != nil {
		return "", "", fmt.Errorf("videoref.Resolve > %w", err)
	}
	transcript, err := bootstrap.NewFetcher(cfg).Fetch(ctx, ref, lang)
	if err != nil {
		return "", "", fmt.Errorf("fetcher.Fetch > %w", err)
	}
	return ref, transcript, nil
}
