package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration and returns all problems found.
func (c *Config) Validate() []error {
	var errors []error

	if c.Homeserver.URL == "" {
		errors = append(errors, fmt.Errorf("homeserver.url is required"))
	} else if !strings.HasPrefix(c.Homeserver.URL, "http://") && !strings.HasPrefix(c.Homeserver.URL, "https://") {
		errors = append(errors, fmt.Errorf("homeserver.url must be an http(s) URL, got: %s", c.Homeserver.URL))
	}

	if c.Homeserver.MXID == "" {
		errors = append(errors, fmt.Errorf("homeserver.mxid is required"))
	} else if !strings.HasPrefix(c.Homeserver.MXID, "@") {
		errors = append(errors, fmt.Errorf("homeserver.mxid must start with '@', got: %s", c.Homeserver.MXID))
	}

	if c.Homeserver.AccessToken == "" {
		errors = append(errors, fmt.Errorf("homeserver.access_token is required"))
	}

	if err := validatePath(c.Paths.MediaRoot, "paths.media_root"); err != nil {
		errors = append(errors, err)
	}
	if err := validatePath(c.Paths.StateDB, "paths.state_db"); err != nil {
		errors = append(errors, err)
	}

	if c.Policy.ImageRetentionDays < 0 {
		errors = append(errors, fmt.Errorf("policy.image_retention_days cannot be negative"))
	}
	if c.Policy.NonImageRetentionDays < 0 {
		errors = append(errors, fmt.Errorf("policy.non_image_retention_days cannot be negative"))
	}
	if c.Policy.PressureThreshold <= 0 || c.Policy.PressureThreshold > 1 {
		errors = append(errors, fmt.Errorf("policy.pressure_threshold must be in (0, 1], got %v", c.Policy.PressureThreshold))
	}
	if c.Policy.EmergencyThreshold <= 0 || c.Policy.EmergencyThreshold > 1 {
		errors = append(errors, fmt.Errorf("policy.emergency_threshold must be in (0, 1], got %v", c.Policy.EmergencyThreshold))
	}
	if c.Policy.EmergencyThreshold < c.Policy.PressureThreshold {
		errors = append(errors, fmt.Errorf("policy.emergency_threshold (%v) cannot be below policy.pressure_threshold (%v)",
			c.Policy.EmergencyThreshold, c.Policy.PressureThreshold))
	}

	if c.Sync.PageLimit < 1 || c.Sync.PageLimit > 1000 {
		errors = append(errors, fmt.Errorf("sync.page_limit must be between 1 and 1000, got %d", c.Sync.PageLimit))
	}

	for _, room := range c.Rooms.Allowlist {
		if !strings.HasPrefix(room, "!") {
			errors = append(errors, fmt.Errorf("rooms.allowlist entry is not a room id: %s", room))
		}
	}
	if c.Notifications.LogRoomID != "" && !strings.HasPrefix(c.Notifications.LogRoomID, "!") {
		errors = append(errors, fmt.Errorf("notifications.log_room_id is not a room id: %s", c.Notifications.LogRoomID))
	}

	if c.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[strings.ToLower(c.Logging.Level)] {
			errors = append(errors, fmt.Errorf("invalid logging.level: %s (expected: debug, info, warn, error)", c.Logging.Level))
		}
	}
	if c.Logging.Format != "" {
		validFormats := map[string]bool{"json": true, "text": true}
		if !validFormats[strings.ToLower(c.Logging.Format)] {
			errors = append(errors, fmt.Errorf("invalid logging.format: %s (expected: json, text)", c.Logging.Format))
		}
	}

	return errors
}

func validatePath(path, fieldName string) error {
	if path == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	if strings.HasPrefix(path, "~") {
		return nil
	}

	if strings.Contains(path, "..") {
		return fmt.Errorf("%s contains potentially dangerous path traversal sequence", fieldName)
	}

	return nil
}
