package main

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Sweeper - media retention housekeeper for Matrix rooms",
	Long: `Sweeper tracks media uploads seen in Matrix rooms and periodically
redacts the oldest and largest ones, either on a retention schedule or when
the media filesystem runs out of space. It is a single-pass batch job meant
to be invoked from cron.`,
	Version: Version,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(runCmd)
}
