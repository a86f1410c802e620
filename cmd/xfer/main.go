package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bamsammich/xfer/internal/config"
	"github.com/bamsammich/xfer/internal/platform"
	"github.com/bamsammich/xfer/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// app carries state shared by every subcommand once the root command has
// loaded configuration and set up logging.
type app struct {
	logger  *slog.Logger
	logOut  io.Closer
	cfg     config.Config
	caps    platform.Capabilities
	logFile string
	verbose bool
	quiet   bool
}

func run() int {
	a := &app{}
	var showVersion bool

	rootCmd := &cobra.Command{
		Use:   "xfer",
		Short: "Probe kernel file APIs, read extended metadata and copy files in-kernel",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "xfer %s\n", version)
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().StringVar(&a.logFile, "log", "", "write structured JSON log to FILE")

	rootCmd.AddCommand(newProbeCmd(a))
	rootCmd.AddCommand(newStatCmd(a))
	rootCmd.AddCommand(newCopyCmd(a))
	rootCmd.AddCommand(docsCmd)

	err := rootCmd.Execute()
	if a.logOut != nil {
		a.logOut.Close()
	}
	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// setup loads the optional config file, configures logging and resolves the
// capability table every subcommand works against.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config", "path", config.Path(), "error", err)
	}
	a.cfg = cfg

	if !cmd.Flags().Changed("log") && cfg.Log.File != nil {
		a.logFile = *cfg.Log.File
	}

	logLevel := slog.LevelWarn
	switch {
	case a.verbose:
		logLevel = slog.LevelDebug
	case a.quiet:
	case cfg.Log.Level != nil:
		if err := logLevel.UnmarshalText([]byte(*cfg.Log.Level)); err != nil {
			return fmt.Errorf("invalid log level in config: %w", err)
		}
	default:
		logLevel = slog.LevelInfo
	}

	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	var logHandler slog.Handler = textHandler
	if a.logFile != "" {
		lf, err := os.Create(a.logFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logOut = lf
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	a.logger = slog.New(logHandler)
	slog.SetDefault(a.logger)

	a.caps = cfg.Capabilities.Apply(platform.Detect())
	a.logger.Debug("capabilities", "detected", platform.Detect(), "effective", a.caps)
	return nil
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
