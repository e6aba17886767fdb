package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/catcord/sweeper/internal/app"
	"github.com/catcord/sweeper/internal/config"
	"github.com/catcord/sweeper/internal/logger"
	"github.com/catcord/sweeper/internal/sweep"
)

var (
	runConfigPath string
	runMode       string
	runDryRun     bool
	runDebug      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Perform one sweep pass",
	Long: `Perform a single sweep pass: refresh the upload ledger from the
configured rooms, then evict uploads according to the selected trigger.

The retention trigger redacts uploads older than their per-class retention
age. The pressure trigger redacts the largest uploads until the media
filesystem drops back under the configured usage threshold.`,
	Run: runHandler,
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "config.toml", "path to configuration file")
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "", "sweep trigger: retention or pressure (required)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "report what would be evicted without touching anything")
	runCmd.Flags().BoolVar(&runDebug, "debug", false, "enable debug logging")
	_ = runCmd.MarkFlagRequired("mode")
}

func parseTrigger(mode string) (sweep.Trigger, error) {
	switch mode {
	case "retention":
		return sweep.TriggerRetention, nil
	case "pressure":
		return sweep.TriggerPressure, nil
	default:
		return "", fmt.Errorf("invalid mode: %s (expected: retention, pressure)", mode)
	}
}

func runHandler(cmd *cobra.Command, args []string) {
	trigger, err := parseTrigger(runMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(runConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if errors := cfg.Validate(); len(errors) > 0 {
		fmt.Fprintf(os.Stderr, "❌ Configuration validation failed:\n")
		for _, e := range errors {
			fmt.Fprintf(os.Stderr, "  - %v\n", e)
		}
		os.Exit(1)
	}

	if runDebug {
		cfg.Logging.Level = "debug"
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	log.Info("🚀 Starting sweeper",
		logger.Field{Key: "version", Value: Version},
		logger.Field{Key: "git_commit", Value: GitCommit},
		logger.Field{Key: "config", Value: runConfigPath},
		logger.Field{Key: "mode", Value: string(trigger)},
		logger.Field{Key: "dry_run", Value: runDryRun})

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("setup failed", err)
		os.Exit(1)
	}
	defer a.Close()

	stats, err := a.Run(context.Background(), trigger, runDryRun)
	if err != nil {
		log.Error("run failed", err)
		os.Exit(1)
	}

	fmt.Printf("Completed: deleted=%d freed_bytes=%d\n", stats.DeletedCount, stats.FreedBytes)
}
