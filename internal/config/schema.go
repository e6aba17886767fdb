// Package config provides configuration loading and validation for the sweeper.
// It supports TOML configuration files with environment variable expansion,
// default values, and validation.
//
// Configuration structure:
//   - [homeserver]: Matrix homeserver URL and bot credentials
//   - [rooms]: Room allowlist for ingestion
//   - [paths]: Media root and ledger database locations
//   - [policy]: Retention ages and disk-pressure thresholds
//   - [sync]: Message fetch page size
//   - [notifications]: Summary notification settings
//   - [metrics]: Optional Pushgateway settings
//   - [logging]: Logging level, format, and output
//
// Environment variables can be referenced using ${VAR} or ${VAR:default}
// syntax. For example: access_token = "${SWEEPER_ACCESS_TOKEN}"
package config

// Config represents the main application configuration.
type Config struct {
	Homeserver    HomeserverConfig    `toml:"homeserver"`
	Rooms         RoomsConfig         `toml:"rooms"`
	Paths         PathsConfig         `toml:"paths"`
	Policy        PolicyConfig        `toml:"policy"`
	Sync          SyncConfig          `toml:"sync"`
	Notifications NotificationsConfig `toml:"notifications"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Logging       LoggingConfig       `toml:"logging"`
}

// HomeserverConfig holds the Matrix homeserver endpoint and bot credentials.
type HomeserverConfig struct {
	URL         string `toml:"url"`
	MXID        string `toml:"mxid"`
	AccessToken string `toml:"access_token"`
}

// RoomsConfig limits which rooms the sweeper ingests from. An empty allowlist
// means every joined room.
type RoomsConfig struct {
	Allowlist []string `toml:"allowlist"`
}

// PathsConfig holds filesystem locations used by the sweeper.
type PathsConfig struct {
	MediaRoot string `toml:"media_root"`
	StateDB   string `toml:"state_db"`
}

// PolicyConfig holds retention ages and disk thresholds.
type PolicyConfig struct {
	ImageRetentionDays    int     `toml:"image_retention_days"`
	NonImageRetentionDays int     `toml:"non_image_retention_days"`
	PressureThreshold     float64 `toml:"pressure_threshold"`
	EmergencyThreshold    float64 `toml:"emergency_threshold"`
}

// SyncConfig controls the bounded backward message scan.
type SyncConfig struct {
	PageLimit int `toml:"page_limit"`
}

// NotificationsConfig controls run summary notifications.
type NotificationsConfig struct {
	LogRoomID                 string `toml:"log_room_id"`
	SendDeletionSummary       bool   `toml:"send_deletion_summary"`
	SendZeroDeletionSummaries bool   `toml:"send_zero_deletion_summaries"`
}

// MetricsConfig controls the optional end-of-run metrics push.
type MetricsConfig struct {
	PushgatewayURL string `toml:"pushgateway_url"`
	JobName        string `toml:"job_name"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}
