package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jchantrell/uasset/internal/config"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	cfgFile string

	dbPath     string
	outputDir  string
	backupDir  string
	logLevel   string
	logFormat  string
	noProgress bool
)

var rootCmd = &cobra.Command{
	Use:   "uasset",
	Short: "Serialized asset container inspection and editing tool",
	Long: `uasset is a tool for working with serialized asset containers: binary
files holding a versioned header, an object descriptor table, and a data
region of typed payloads.

It can list and extract object payloads, repack containers after edits
(replacing, renaming, adding, or removing objects), and export container
metadata into a queryable SQLite database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if cmd.Flags().Changed("database") {
			cfg.Database = dbPath
		}
		if cmd.Flags().Changed("output") {
			cfg.Output = outputDir
		}
		if cmd.Flags().Changed("backup-dir") {
			cfg.BackupDir = backupDir
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}

		var level slog.Level
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		var handler slog.Handler
		if cfg.LogFormat == "json" {
			handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})
		} else {
			handler = tint.NewHandler(os.Stderr, &tint.Options{
				Level: level,
			})
		}

		logger := slog.New(handler)
		slog.SetDefault(logger)

		slog.Debug("Configuration",
			"database", cfg.Database,
			"output", cfg.Output,
			"backup_dir", cfg.BackupDir,
			"keep_backups", cfg.KeepBackups,
			"log_level", cfg.LogLevel,
			"log_format", cfg.LogFormat)

		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is uasset.yaml in pwd)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "database", "d", "", "metadata database file path")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "output directory for extracted payloads")
	rootCmd.PersistentFlags().StringVar(&backupDir, "backup-dir", "", "directory for container backups")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress bar")
}

// progressEnabled suppresses bars when output is structured or verbose.
func progressEnabled() bool {
	return !(noProgress || cfg.LogFormat == "json" || cfg.LogLevel == "debug")
}
