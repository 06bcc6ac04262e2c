// Package config loads and validates the JSON configuration file.
package config

// Config is the root configuration
type Config struct {
	NTP *NTP `json:"ntp"`
	Web *Web `json:"web"`
	Log *Log `json:"log"`
}

// NTP configures the servers to query and the health check policy
type NTP struct {
	// Servers to query, tried in order until one answers
	Servers []string `json:"servers"`

	// Port is the server UDP port (default 123)
	Port int `json:"port"`

	// TimeoutMs bounds a single query (default 10000)
	TimeoutMs int `json:"timeout_ms"`

	// CheckIntervalSeconds is the period between health checks (default 300)
	CheckIntervalSeconds int `json:"check_interval_seconds"`

	// MaxOffsetSeconds is the largest local clock offset still considered
	// healthy (default 5)
	MaxOffsetSeconds int `json:"max_offset_seconds"`
}

// Web configures the status web console
type Web struct {
	Enabled bool   `json:"enabled"`
	Bind    string `json:"bind"`
	Port    int    `json:"port"`
}

// Log configures logging output
type Log struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}
