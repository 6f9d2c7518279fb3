package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/tubenotes/internal/config"
	"github.com/at-ishikawa/tubenotes/internal/notecache"
)

var (
	configFile  string
	cacheDriver DriverFlag
)

// DriverFlag overrides the configured notes cache driver.
type DriverFlag string

// Set implements pflag.Value.
func (d *DriverFlag) Set(v string) error {
	for _, driver := range notecache.Drivers {
		if v == driver {
			*d = DriverFlag(v)
			return nil
		}
	}
	return fmt.Errorf("invalid value %q, valid values are %v", v, notecache.Drivers)
}

// String implements pflag.Value.
func (d *DriverFlag) String() string {
	if d == nil {
		return ""
	}
	return string(*d)
}

// Type implements pflag.Value.
func (d *DriverFlag) Type() string {
	return "driver"
}

var (
	_ pflag.Value = (*DriverFlag)(nil)
)

func main() {
	rootCommand := newRootCommand()
	if err := rootCommand.Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
	os.Exit(0)
}

func newRootCommand() *cobra.Command {
	var debugMode bool
	rootCommand := &cobra.Command{
		Use:           "tubenotes",
		Short:         "Study notes, mock tests and a mentor for YouTube videos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			if err := config.LoadDotEnv(); err != nil {
				return fmt.Errorf("config.LoadDotEnv > %w", err)
			}
			return nil
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")
	rootCommand.PersistentFlags().Var(&cacheDriver, "cache-driver", fmt.Sprintf("notes cache driver, one of %v", notecache.Drivers))

	rootCommand.AddCommand(
		newTranscriptCommand(),
		newNotesCommand(),
		newMockTestCommand(),
		newMentorCommand(),
		newStudyCommand(),
		newCacheCommand(),
	)
	return rootCommand
}

// setupLogger configures the default logger based on debug mode
func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cacheDriver != "" {
		cfg.Cache.Driver = string(cacheDriver)
	}
	return cfg, nil
}
