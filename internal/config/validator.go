package config

import (
	"fmt"
	"strings"
)

// Validate validates the configuration
func Validate(c *Config) error {
	if c.NTP == nil {
		return fmt.Errorf("ntp section is required")
	}

	if len(c.NTP.Servers) == 0 {
		return fmt.Errorf("at least one NTP server is required")
	}
	for i, server := range c.NTP.Servers {
		if strings.TrimSpace(server) == "" {
			return fmt.Errorf("ntp.servers[%d] is empty", i)
		}
	}

	if c.NTP.Port < 1 || c.NTP.Port > 65535 {
		return fmt.Errorf("ntp.port must be in [1, 65535], got %d", c.NTP.Port)
	}
	if c.NTP.TimeoutMs < 1 {
		return fmt.Errorf("ntp.timeout_ms must be positive, got %d", c.NTP.TimeoutMs)
	}
	if c.NTP.CheckIntervalSeconds < 1 {
		return fmt.Errorf("ntp.check_interval_seconds must be positive, got %d", c.NTP.CheckIntervalSeconds)
	}
	if c.NTP.MaxOffsetSeconds < 1 {
		return fmt.Errorf("ntp.max_offset_seconds must be positive, got %d", c.NTP.MaxOffsetSeconds)
	}

	if c.Web != nil && c.Web.Enabled {
		if c.Web.Port < 1 || c.Web.Port > 65535 {
			return fmt.Errorf("web.port must be in [1, 65535], got %d", c.Web.Port)
		}
	}

	if c.Log != nil {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[c.Log.Level] {
			return fmt.Errorf("log.level must be one of debug, info, warn, error")
		}
		validFormats := map[string]bool{"json": true, "text": true}
		if !validFormats[c.Log.Format] {
			return fmt.Errorf("log.format must be 'json' or 'text'")
		}
	}

	return nil
}
