package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tubenotes/internal/bootstrap"
	"github.com/at-ishikawa/tubenotes/internal/config"
	"github.com/at-ishikawa/tubenotes/internal/notecache"
	"github.com/at-ishikawa/tubenotes/internal/videoref"
)

var errMemoryCache = errors.New("the memory cache driver does not outlive this command; use file, sqlite, mysql or redis")

func newCacheCommand() *cobra.Command {
	cacheCommand := &cobra.Command{
		Use:   "cache",
		Short: "Read and write cached notes",
	}
	cacheCommand.AddCommand(newCacheGetCommand(), newCachePutCommand())
	return cacheCommand
}

func newCacheGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <url>",
		Short: "Print the cached notes of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := videoref.Resolve(args[0])
			if err != nil {
				return fmt.Errorf("videoref.Resolve > %w", err)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app := bootstrap.New()
			return app.Run(cmd.Context(), func(ctx context.Context) error {
				store, err := openPersistentCache(ctx, app, cfg)
				if err != nil {
					return err
				}
				text, ok, err := store.Get(ctx, ref.CacheKey())
				if err != nil {
					return fmt.Errorf("store.Get > %w", err)
				}
				if !ok {
					return fmt.Errorf("no cached notes for %s", ref)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
}

func newCachePutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <url> <file>",
		Short: "Store a notes document as the cached notes of a video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := videoref.Resolve(args[0])
			if err != nil {
				return fmt.Errorf("videoref.Resolve > %w", err)
			}
			content, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("os.ReadFile(%s) > %w", args[1], err)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app := bootstrap.New()
			return app.Run(cmd.Context(), func(ctx context.Context) error {
				store, err := openPersistentCache(ctx, app, cfg)
				if err != nil {
					return err
				}
				if err := store.Put(ctx, ref.CacheKey(), string(content)); err != nil {
					return fmt.Errorf("store.Put > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cached notes for %s\n", ref)
				return nil
			})
		},
	}
}

func openPersistentCache(ctx context.Context, app *bootstrap.App, cfg *config.Config) (notecache.Store, error) {
	if cfg.Cache.Driver == notecache.DriverMemory {
		return nil, errMemoryCache
	}
	return app.OpenCache(ctx, cfg)
}
