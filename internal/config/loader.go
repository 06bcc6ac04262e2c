package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load loads configuration from the specified file path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Apply defaults
	applyDefaults(&config)

	// Validate
	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &config, nil
}

// Default returns a configuration with all defaults applied, for running
// without a config file.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// applyDefaults sets default values for optional fields
func applyDefaults(c *Config) {
	// NTP defaults
	if c.NTP == nil {
		c.NTP = &NTP{}
	}
	if len(c.NTP.Servers) == 0 {
		c.NTP.Servers = []string{"pool.ntp.org"}
	}
	if c.NTP.Port == 0 {
		c.NTP.Port = 123
	}
	if c.NTP.TimeoutMs == 0 {
		c.NTP.TimeoutMs = 10000
	}
	if c.NTP.CheckIntervalSeconds == 0 {
		c.NTP.CheckIntervalSeconds = 300
	}
	if c.NTP.MaxOffsetSeconds == 0 {
		c.NTP.MaxOffsetSeconds = 5
	}

	// Web console defaults
	if c.Web == nil {
		c.Web = &Web{Enabled: true}
	}
	if c.Web.Bind == "" {
		c.Web.Bind = "127.0.0.1"
	}
	if c.Web.Port == 0 {
		c.Web.Port = 8123
	}

	// Log defaults
	if c.Log == nil {
		c.Log = &Log{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
