// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
	"time"
)

// Config represents the application configuration
type Config struct {
	Version        string
	Host           string `toml:"host" mapstructure:"host"`
	Port           int    `toml:"port" mapstructure:"port"`
	LogLevel       string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath        string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize     int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups  int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`
	DatabasePath   string `toml:"databasePath" mapstructure:"databasePath"`
	PprofEnabled   bool   `toml:"pprofEnabled" mapstructure:"pprofEnabled"`
	MetricsEnabled bool   `toml:"metricsEnabled" mapstructure:"metricsEnabled"`
	MetricsHost    string `toml:"metricsHost" mapstructure:"metricsHost"`
	MetricsPort    int    `toml:"metricsPort" mapstructure:"metricsPort"`

	// PollIntervalSeconds controls how often download clients are polled for
	// tracked download reconciliation.
	PollIntervalSeconds int `toml:"pollIntervalSeconds" mapstructure:"pollIntervalSeconds"`

	// MaxDownloadRetries is how many client-reported failures a tracked
	// download absorbs before it is marked failed for good.
	MaxDownloadRetries int `toml:"maxDownloadRetries" mapstructure:"maxDownloadRetries"`

	DownloadClients []DownloadClientConfig `toml:"downloadClients" mapstructure:"downloadClients"`
}

// DownloadClientConfig holds connection settings for one qBittorrent instance.
type DownloadClientConfig struct {
	ID       int    `toml:"id" mapstructure:"id"`
	Name     string `toml:"name" mapstructure:"name"`
	Host     string `toml:"host" mapstructure:"host"`
	Username string `toml:"username" mapstructure:"username"`
	Password string `toml:"password" mapstructure:"password"`
}

// PollInterval returns the reconciliation interval with a sane floor.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Validate checks settings that would otherwise fail at an awkward point
// deep in startup.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MetricsEnabled && (c.MetricsPort <= 0 || c.MetricsPort > 65535) {
		return fmt.Errorf("invalid metrics port %d", c.MetricsPort)
	}

	seen := make(map[int]struct{}, len(c.DownloadClients))
	for _, client := range c.DownloadClients {
		if client.Host == "" {
			return fmt.Errorf("download client %q: host is required", client.Name)
		}
		if _, ok := seen[client.ID]; ok {
			return errors.New("download client ids must be unique")
		}
		seen[client.ID] = struct{}{}
	}

	return nil
}
