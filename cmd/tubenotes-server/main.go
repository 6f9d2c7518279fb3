package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/tubenotes/internal/bootstrap"
	"github.com/at-ishikawa/tubenotes/internal/config"
	"github.com/at-ishikawa/tubenotes/internal/server"
)

var configFile string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var debugMode bool
	rootCmd := &cobra.Command{
		Use:           "tubenotes-server",
		Short:         "tubenotes HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			if err := config.LoadDotEnv(); err != nil {
				return fmt.Errorf("config.LoadDotEnv > %w", err)
			}
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")
	return rootCmd
}

func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	srv, err := newServer(ctx, app, cfg)
	if err != nil {
		return err
	}
	app.AddShutdownHook(srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Default().Info("Starting server", "addr", srv.Addr, "cacheDriver", cfg.Cache.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

// newServer wires the HTTP handler. Resources opened here are released by app's shutdown hooks.
func newServer(ctx context.Context, app *bootstrap.App, cfg *config.Config) (*http.Server, error) {
	generators, err := app.NewGenerators(ctx, cfg)
	if err != nil {
		return nil, err
	}

	handler := server.NewHandler(
		bootstrap.NewFetcher(cfg.Captions),
		generators.Notes,
		generators.MockTests,
		server.NewMentorRegistry(generators.NewMentorSession),
		cfg.Captions.Language,
	)
	return &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.AccessLog(
			server.CORS(h2c.NewHandler(handler.Routes(), &http2.Server{}), cfg.Server.CORS.AllowedOrigins),
		),
	}, nil
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
