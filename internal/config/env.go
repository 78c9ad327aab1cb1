package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override file and default values
func LoadFromEnv(cfg *Config) {
	// Database configuration
	if dbPath := os.Getenv("GAMETRACK_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Monitor configuration
	if pollInterval := os.Getenv("GAMETRACK_POLL_INTERVAL"); pollInterval != "" {
		if seconds, err := strconv.Atoi(pollInterval); err == nil && seconds > 0 {
			cfg.Monitor.PollInterval = time.Duration(seconds) * time.Second
		}
	}

	if minPlay := os.Getenv("GAMETRACK_MIN_PLAY_MINUTES"); minPlay != "" {
		if minutes, err := strconv.Atoi(minPlay); err == nil && minutes >= 0 {
			cfg.Monitor.MinPlayMinutes = minutes
		}
	}

	// Catalog configuration
	if catalogPath := os.Getenv("GAMETRACK_CATALOG"); catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}

	if hosts := os.Getenv("GAMETRACK_BROWSER_HOSTS"); hosts != "" {
		cfg.Catalog.BrowserHosts = splitList(hosts)
	}

	if excluded := os.Getenv("GAMETRACK_EXCLUDED_TITLES"); excluded != "" {
		cfg.Catalog.ExcludedTitles = splitList(excluded)
	}

	// Quota configuration
	if limit := os.Getenv("GAMETRACK_QUOTA_MINUTES"); limit != "" {
		if minutes, err := strconv.Atoi(limit); err == nil && minutes > 0 {
			cfg.Quota.LimitMinutes = minutes
		}
	}

	if stateFile := os.Getenv("GAMETRACK_QUOTA_STATE"); stateFile != "" {
		cfg.Quota.StateFile = stateFile
	}

	// Daemon configuration
	if pidFile := os.Getenv("GAMETRACK_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	// Web configuration
	if webHost := os.Getenv("GAMETRACK_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("GAMETRACK_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// New creates a new Config with default values, applies the optional config
// file named by GAMETRACK_CONFIG, then loads environment overrides.
func New() *Config {
	cfg := Default()
	if path := os.Getenv("GAMETRACK_CONFIG"); path != "" {
		// A broken config file should not silently fall back to defaults,
		// but New has no error channel; the daemon validates right after.
		_ = LoadFromFile(cfg, path)
	}
	LoadFromEnv(cfg)
	return cfg
}
