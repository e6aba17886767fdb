package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/catcord/sweeper/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Validate and inspect Sweeper configuration.`,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file and check for errors.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configPath := "config.toml"
		if len(args) > 0 {
			configPath = args[0]
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
			os.Exit(1)
		}

		if errors := cfg.Validate(); len(errors) > 0 {
			fmt.Fprintf(os.Stderr, "❌ Configuration validation failed:\n")
			for _, e := range errors {
				fmt.Fprintf(os.Stderr, "  - %v\n", e)
			}
			os.Exit(1)
		}

		fmt.Println("✅ Configuration is valid")
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show [config-file]",
	Short: "Show resolved configuration",
	Long:  `Load the configuration, apply defaults, and print the resolved values with secrets masked.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configPath := "config.toml"
		if len(args) > 0 {
			configPath = args[0]
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("homeserver.url:                  %s\n", cfg.Homeserver.URL)
		fmt.Printf("homeserver.mxid:                 %s\n", cfg.Homeserver.MXID)
		fmt.Printf("homeserver.access_token:         %s\n", config.MaskSecret(cfg.Homeserver.AccessToken))
		fmt.Printf("rooms.allowlist:                 %v\n", cfg.Rooms.Allowlist)
		fmt.Printf("paths.media_root:                %s\n", cfg.Paths.MediaRoot)
		fmt.Printf("paths.state_db:                  %s\n", cfg.Paths.StateDB)
		fmt.Printf("policy.image_retention_days:     %d\n", cfg.Policy.ImageRetentionDays)
		fmt.Printf("policy.non_image_retention_days: %d\n", cfg.Policy.NonImageRetentionDays)
		fmt.Printf("policy.pressure_threshold:       %.2f\n", cfg.Policy.PressureThreshold)
		fmt.Printf("policy.emergency_threshold:      %.2f\n", cfg.Policy.EmergencyThreshold)
		fmt.Printf("sync.page_limit:                 %d\n", cfg.Sync.PageLimit)
		fmt.Printf("notifications.log_room_id:       %s\n", cfg.Notifications.LogRoomID)
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}
