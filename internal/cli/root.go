package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cvkit-labs/cvkit/internal/config"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	cfgFile  string
	logLevel string
	cfg      config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cvkit",
	Short: "Common Voice dataset utilities",
	Long: `cvkit is a set of batch utilities for working with Common Voice
datasets: discovering and downloading per-language archives, linking the
validated subset of clips into a flat directory, and collecting the
validated.tsv metadata tables under consistent names.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		cfg = loaded
		setupLogger(cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.cvkit/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(level string) {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "", "info":
	default:
		fmt.Fprintf(os.Stderr, "unknown log level %q, using info\n", level)
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}
