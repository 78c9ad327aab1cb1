package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML config file. Every field is optional; absent
// fields keep their current value.
type fileConfig struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Monitor struct {
		PollSeconds       int  `yaml:"poll_seconds"`
		RefreshMillis     int  `yaml:"refresh_millis"`
		MinPlayMinutes    *int `yaml:"min_play_minutes"`
		DegradedThreshold int  `yaml:"degraded_threshold"`
	} `yaml:"monitor"`
	Catalog struct {
		Path           string   `yaml:"path"`
		BrowserHosts   []string `yaml:"browser_hosts"`
		ExcludedTitles []string `yaml:"excluded_titles"`
	} `yaml:"catalog"`
	Quota struct {
		LimitMinutes int    `yaml:"limit_minutes"`
		StateFile    string `yaml:"state_file"`
	} `yaml:"quota"`
	Web struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"web"`
}

// LoadFromFile applies a YAML config file on top of cfg.
func LoadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return errors.Wrap(err, "failed to parse config file")
	}

	if fc.Database.Path != "" {
		cfg.Database.Path = fc.Database.Path
	}
	if fc.Monitor.PollSeconds > 0 {
		cfg.Monitor.PollInterval = time.Duration(fc.Monitor.PollSeconds) * time.Second
	}
	if fc.Monitor.RefreshMillis > 0 {
		cfg.Monitor.RefreshInterval = time.Duration(fc.Monitor.RefreshMillis) * time.Millisecond
	}
	if fc.Monitor.MinPlayMinutes != nil && *fc.Monitor.MinPlayMinutes >= 0 {
		cfg.Monitor.MinPlayMinutes = *fc.Monitor.MinPlayMinutes
	}
	if fc.Monitor.DegradedThreshold > 0 {
		cfg.Monitor.DegradedThreshold = fc.Monitor.DegradedThreshold
	}
	if fc.Catalog.Path != "" {
		cfg.Catalog.Path = fc.Catalog.Path
	}
	if len(fc.Catalog.BrowserHosts) > 0 {
		cfg.Catalog.BrowserHosts = fc.Catalog.BrowserHosts
	}
	if len(fc.Catalog.ExcludedTitles) > 0 {
		cfg.Catalog.ExcludedTitles = fc.Catalog.ExcludedTitles
	}
	if fc.Quota.LimitMinutes > 0 {
		cfg.Quota.LimitMinutes = fc.Quota.LimitMinutes
	}
	if fc.Quota.StateFile != "" {
		cfg.Quota.StateFile = fc.Quota.StateFile
	}
	if fc.Web.Host != "" {
		cfg.Web.Host = fc.Web.Host
	}
	if fc.Web.Port > 0 {
		cfg.Web.Port = fc.Web.Port
	}

	return nil
}
