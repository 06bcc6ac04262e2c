// Package time tracks the health of the local clock by periodically
// comparing it against a set of NTP servers.
package time

import (
	"sync"
	"time"
)

// TimeHealth manages time health status and periodic SNTP checks
type TimeHealth struct {
	healthy       bool
	offset        time.Duration // Local clock offset from the last responding server
	lastCheck     time.Time
	lastServer    string // Server that answered the last successful check
	checkInterval time.Duration
	maxOffset     time.Duration
	timeout       time.Duration
	port          int
	servers       []string
	done          chan struct{}
	mu            sync.RWMutex
}

// Config represents time health configuration
type Config struct {
	Servers              []string
	Port                 int
	CheckIntervalSeconds int
	MaxOffsetSeconds     int
	TimeoutMs            int
}

// Status represents the current time health status
type Status struct {
	Healthy    bool
	Offset     time.Duration
	LastCheck  time.Time
	LastServer string
}

// TimeInfo is the status surface exposed to the web console
type TimeInfo struct {
	UTC        string   `json:"utc"`
	Healthy    bool     `json:"healthy"`
	OffsetMs   int64    `json:"offset_ms"`
	LastCheck  string   `json:"last_check,omitempty"`
	LastServer string   `json:"last_server,omitempty"`
	Servers    []string `json:"servers"`
}

// NewTimeHealth creates a new time health manager
func NewTimeHealth(config Config) *TimeHealth {
	checkInterval := time.Duration(config.CheckIntervalSeconds) * time.Second
	if checkInterval == 0 {
		checkInterval = 300 * time.Second // Default 5 minutes
	}

	maxOffset := time.Duration(config.MaxOffsetSeconds) * time.Second
	if maxOffset == 0 {
		maxOffset = 5 * time.Second // Default 5 seconds
	}

	timeout := time.Duration(config.TimeoutMs) * time.Millisecond
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	servers := config.Servers
	if len(servers) == 0 {
		servers = []string{"pool.ntp.org"} // Default NTP server
	}

	return &TimeHealth{
		healthy:       false, // Start as unhealthy until first check
		offset:        0,
		lastCheck:     time.Time{},
		checkInterval: checkInterval,
		maxOffset:     maxOffset,
		timeout:       timeout,
		port:          config.Port,
		servers:       servers,
		done:          make(chan struct{}),
	}
}

// IsHealthy returns whether time is currently considered healthy
func (th *TimeHealth) IsHealthy() bool {
	th.mu.RLock()
	defer th.mu.RUnlock()
	return th.healthy
}

// GetOffset returns the current time offset
func (th *TimeHealth) GetOffset() time.Duration {
	th.mu.RLock()
	defer th.mu.RUnlock()
	return th.offset
}

// GetStatus returns the current time health status
func (th *TimeHealth) GetStatus() Status {
	th.mu.RLock()
	defer th.mu.RUnlock()
	return Status{
		Healthy:    th.healthy,
		Offset:     th.offset,
		LastCheck:  th.lastCheck,
		LastServer: th.lastServer,
	}
}

// GetTimeInfo returns current time information for the web console
func (th *TimeHealth) GetTimeInfo() TimeInfo {
	status := th.GetStatus()

	info := TimeInfo{
		UTC:        time.Now().UTC().Format(time.RFC3339),
		Healthy:    status.Healthy,
		OffsetMs:   status.Offset.Milliseconds(),
		LastServer: status.LastServer,
		Servers:    th.servers,
	}
	if !status.LastCheck.IsZero() {
		info.LastCheck = status.LastCheck.UTC().Format(time.RFC3339)
	}
	return info
}

// Start begins periodic SNTP health checks
func (th *TimeHealth) Start() {
	// Perform initial check
	th.check()

	// Start periodic checks
	go th.run()
}

// Stop ends periodic checks
func (th *TimeHealth) Stop() {
	close(th.done)
}

// run performs periodic SNTP checks
func (th *TimeHealth) run() {
	ticker := time.NewTicker(th.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			th.check()
		case <-th.done:
			return
		}
	}
}

// check performs a single SNTP check
func (th *TimeHealth) check() {
	// Try each server until one succeeds
	for _, server := range th.servers {
		offset, err := th.queryServer(server)
		if err != nil {
			continue // Try next server
		}

		// Update state
		th.mu.Lock()
		th.offset = offset
		th.lastCheck = time.Now()
		th.lastServer = server
		th.healthy = absDuration(offset) <= th.maxOffset
		th.mu.Unlock()

		return // Success
	}

	// All servers failed - mark as unhealthy
	th.mu.Lock()
	th.healthy = false
	th.lastCheck = time.Now()
	th.mu.Unlock()
}

// queryServer is declared in sntp.go to keep types.go focused on types

// absDuration returns the absolute value of a duration
func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
