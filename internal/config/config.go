package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Monitor configuration
	Monitor MonitorConfig

	// Catalog and title-scan configuration
	Catalog CatalogConfig

	// Quota timer configuration
	Quota QuotaConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Web server configuration
	Web WebConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string // Path to SQLite database file
}

// MonitorConfig holds the session engine's tick behavior
type MonitorConfig struct {
	PollInterval      time.Duration // How often to reconcile against window titles
	RefreshInterval   time.Duration // Display-only refresh cadence (read-only)
	MinPlayMinutes    int           // Sessions shorter than this are not recorded
	DegradedThreshold int           // Consecutive snapshot failures before degraded mode
}

// CatalogConfig holds the entity catalog and title classification lists
type CatalogConfig struct {
	Path           string   // Path to the YAML game catalog
	BrowserHosts   []string // Title fragments that mark a window as browser-hosted
	ExcludedTitles []string // Titles removed from every snapshot before matching
}

// QuotaConfig holds the daily time budget mode configuration
type QuotaConfig struct {
	LimitMinutes int           // Daily budget in minutes
	StateFile    string        // Path to the persisted quota state
	TickInterval time.Duration // Countdown refresh cadence
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
	LogFile string // Daemon log destination
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string // Host to bind web server to
	Port int    // Port for web server
}

// Default returns a Config with sensible default values
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/gametrack/gametrack.db
		},
		Monitor: MonitorConfig{
			PollInterval:      1 * time.Second,
			RefreshInterval:   100 * time.Millisecond,
			MinPlayMinutes:    5,
			DegradedThreshold: 5,
		},
		Catalog: CatalogConfig{
			Path: filepath.Join(home, ".config", "gametrack", "games.yaml"),
			BrowserHosts: []string{
				"Google Chrome",
				"Microsoft Edge",
				"Mozilla Firefox",
				"Brave",
				"Opera",
			},
			ExcludedTitles: []string{
				"gametrack",
				"Program Manager",
				"Desktop",
			},
		},
		Quota: QuotaConfig{
			LimitMinutes: 120,
			StateFile:    filepath.Join(home, ".config", "gametrack", "quota.json"),
			TickInterval: 100 * time.Millisecond,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/gametrack-%d.pid", os.Getuid()),
			LogFile: "/tmp/gametrack.log",
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 10000 + os.Getuid(),
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Monitor.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("poll interval (%v) is below the 100ms minimum", c.Monitor.PollInterval)
	}

	if c.Monitor.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %v", c.Monitor.RefreshInterval)
	}

	if c.Monitor.MinPlayMinutes < 0 {
		return fmt.Errorf("minimum play minutes cannot be negative, got %d", c.Monitor.MinPlayMinutes)
	}

	if c.Monitor.DegradedThreshold < 1 {
		return fmt.Errorf("degraded threshold must be at least 1, got %d", c.Monitor.DegradedThreshold)
	}

	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog path cannot be empty")
	}

	if c.Quota.LimitMinutes < 1 {
		return fmt.Errorf("quota limit must be at least 1 minute, got %d", c.Quota.LimitMinutes)
	}

	if c.Quota.TickInterval <= 0 {
		return fmt.Errorf("quota tick interval must be positive, got %v", c.Quota.TickInterval)
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

// MinPlaySeconds returns the recording threshold in seconds
func (c *Config) MinPlaySeconds() float64 {
	return float64(c.Monitor.MinPlayMinutes) * 60
}

// QuotaLimit returns the daily budget as a duration
func (c *Config) QuotaLimit() time.Duration {
	return time.Duration(c.Quota.LimitMinutes) * time.Minute
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Database:
    Path: %s
  Monitor:
    Poll Interval: %v
    Refresh Interval: %v
    Min Play Minutes: %d
    Degraded Threshold: %d
  Catalog:
    Path: %s
    Browser Hosts: %v
    Excluded Titles: %v
  Quota:
    Limit: %d minutes
    State File: %s
  Daemon:
    PID File: %s
    Log File: %s
  Web:
    Host: %s
    Port: %d`,
		c.Database.Path,
		c.Monitor.PollInterval,
		c.Monitor.RefreshInterval,
		c.Monitor.MinPlayMinutes,
		c.Monitor.DegradedThreshold,
		c.Catalog.Path,
		c.Catalog.BrowserHosts,
		c.Catalog.ExcludedTitles,
		c.Quota.LimitMinutes,
		c.Quota.StateFile,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Web.Host,
		c.Web.Port,
	)
}
