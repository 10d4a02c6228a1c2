// simmr is a cooking companion: a recipe catalogue, a pantry that knows
// what you can make, and a story-telling cook-along.
//
// Usage:
//
//	simmr [--config simmr.yaml] [--verbose] [--quiet] <command>
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/simmr/internal/config"
	"github.com/hammamikhairi/simmr/internal/logger"
)

var (
	cfgPath string
	verbose bool
	quiet   bool

	cfg *config.Config
	log *logger.Logger

	logFile *os.File
)

var rootCmd = &cobra.Command{
	Use:           "simmr",
	Short:         "Recipes, pantry and a story-telling cook-along",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		level := logger.ParseLevel(cfg.Logging.Level)
		if verbose {
			level = logger.LevelVerbose
		}
		if quiet {
			level = logger.LevelOff
		}
		log = logger.New(level, logOutput(cfg.Logging.File))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
		if logFile != nil {
			logFile.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "simmr.yaml", "config file (missing file uses defaults)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "disable all logging")

	rootCmd.AddCommand(serveCmd, recipesCmd, pantryCmd, readyCmd, cookCmd, loginCmd, logoutCmd, whoamiCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// logOutput opens the configured log file so interactive output stays
// clean, falling back to stderr.
func logOutput(path string) io.Writer {
	if path == "" || path == "stderr" {
		return os.Stderr
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		return os.Stderr
	}
	logFile = f
	return f
}

// ── config ──────────────────────────────────────────────────────

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or write the configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to --config",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgPath); err == nil && !forceInit {
			return errors.New(cfgPath + " already exists (use --force to overwrite)")
		}
		if err := cfg.Save(cfgPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgPath)
		return nil
	},
}

var forceInit bool

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}
