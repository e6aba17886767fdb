package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML configuration file, applying defaults and
// expanding environment variable references.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	expandEnvVars(&cfg)

	return &cfg, nil
}

// applyDefaults fills in default values for unset fields.
func applyDefaults(c *Config) {
	if c.Paths.MediaRoot == "" {
		c.Paths.MediaRoot = "/srv/media"
	}
	if c.Paths.StateDB == "" {
		c.Paths.StateDB = "/state/uploads.db"
	}

	if c.Policy.ImageRetentionDays == 0 {
		c.Policy.ImageRetentionDays = 90
	}
	if c.Policy.NonImageRetentionDays == 0 {
		c.Policy.NonImageRetentionDays = 30
	}
	if c.Policy.PressureThreshold == 0 {
		c.Policy.PressureThreshold = 0.85
	}
	if c.Policy.EmergencyThreshold == 0 {
		c.Policy.EmergencyThreshold = 0.92
	}

	if c.Sync.PageLimit == 0 {
		c.Sync.PageLimit = 200
	}

	if c.Metrics.JobName == "" {
		c.Metrics.JobName = "sweeper"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// expandEnvVars expands environment variable references in secret-bearing
// and path fields.
func expandEnvVars(c *Config) {
	if strings.HasPrefix(c.Homeserver.AccessToken, "${") {
		c.Homeserver.AccessToken = expandEnv(c.Homeserver.AccessToken)
	}
	if strings.HasPrefix(c.Homeserver.URL, "${") {
		c.Homeserver.URL = expandEnv(c.Homeserver.URL)
	}

	c.Paths.MediaRoot = expandHome(c.Paths.MediaRoot)
	c.Paths.StateDB = expandHome(c.Paths.StateDB)
}

// expandEnv expands a ${VAR} or ${VAR:default} reference.
func expandEnv(s string) string {
	if !strings.HasPrefix(s, "${") {
		return s
	}

	end := strings.Index(s, "}")
	if end == -1 {
		return s
	}

	content := s[2:end]
	if parts := strings.SplitN(content, ":", 2); len(parts) == 2 {
		if val := os.Getenv(parts[0]); val != "" {
			return val
		}
		return parts[1]
	}

	return os.Getenv(content)
}

// expandHome expands a leading ~ in a path.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
