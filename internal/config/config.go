// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/autobrr/grabarr/internal/buildinfo"
	"github.com/autobrr/grabarr/internal/domain"
)

// AppConfig loads, defaults, and persists the application configuration.
type AppConfig struct {
	Config *domain.Config
	viper  *viper.Viper
}

// New loads configuration from the given path, or from the default config
// directory when configPath is empty. A default config file is written when
// none exists yet.
func New(configPath string) (*AppConfig, error) {
	c := &AppConfig{
		viper: viper.New(),
	}

	c.defaults()

	if err := c.load(configPath); err != nil {
		return nil, err
	}

	if err := c.Config.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *AppConfig) defaults() {
	c.Config = &domain.Config{
		Version:             buildinfo.Version,
		Host:                "localhost",
		Port:                7878,
		LogLevel:            "INFO",
		LogMaxSize:          50,
		LogMaxBackups:       3,
		MetricsEnabled:      false,
		MetricsHost:         "127.0.0.1",
		MetricsPort:         9074,
		PollIntervalSeconds: 30,
		MaxDownloadRetries:  3,
	}
}

func (c *AppConfig) load(configPath string) error {
	c.viper.SetConfigType("toml")

	if configPath != "" {
		if filepath.Ext(configPath) == "" {
			configPath = filepath.Join(configPath, "config.toml")
		}
		c.viper.SetConfigFile(configPath)
	} else {
		configPath = filepath.Join(getDefaultConfigDir(), "config.toml")
		c.viper.SetConfigFile(configPath)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := c.writeDefaultConfig(configPath); err != nil {
			return fmt.Errorf("create default config: %w", err)
		}
		log.Info().Str("path", configPath).Msg("Created default config file")
	}

	if err := c.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c.bindEnvs()

	if err := c.viper.Unmarshal(c.Config); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if c.Config.DatabasePath == "" {
		c.Config.DatabasePath = filepath.Join(filepath.Dir(configPath), "grabarr.db")
	}
	if c.Config.LogPath != "" && !filepath.IsAbs(c.Config.LogPath) {
		c.Config.LogPath = filepath.Join(filepath.Dir(configPath), c.Config.LogPath)
	}

	return nil
}

// bindEnvs wires GRABARR__* environment variables so they override the
// config file. Viper's automatic env matching cannot map SNAKE_CASE env
// names onto camelCase keys, hence the explicit table.
func (c *AppConfig) bindEnvs() {
	for key, env := range map[string]string{
		"host":                "GRABARR__HOST",
		"port":                "GRABARR__PORT",
		"logLevel":            "GRABARR__LOG_LEVEL",
		"logPath":             "GRABARR__LOG_PATH",
		"logMaxSize":          "GRABARR__LOG_MAX_SIZE",
		"logMaxBackups":       "GRABARR__LOG_MAX_BACKUPS",
		"databasePath":        "GRABARR__DATABASE_PATH",
		"pprofEnabled":        "GRABARR__PPROF_ENABLED",
		"metricsEnabled":      "GRABARR__METRICS_ENABLED",
		"metricsHost":         "GRABARR__METRICS_HOST",
		"metricsPort":         "GRABARR__METRICS_PORT",
		"pollIntervalSeconds": "GRABARR__POLL_INTERVAL_SECONDS",
		"maxDownloadRetries":  "GRABARR__MAX_DOWNLOAD_RETRIES",
	} {
		if err := c.viper.BindEnv(key, env); err != nil {
			log.Warn().Err(err).Str("env", env).Msg("Failed to bind environment variable")
		}
	}
}

func (c *AppConfig) writeDefaultConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(configPath, []byte(defaultConfigTemplate), 0o644)
}

// GetDatabasePath returns the resolved database file location.
func (c *AppConfig) GetDatabasePath() string {
	return c.Config.DatabasePath
}

// getDefaultConfigDir resolves the config directory, honoring
// XDG_CONFIG_HOME for container setups that mount /config.
func getDefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if xdg == "/config" {
			return xdg
		}
		return filepath.Join(xdg, "grabarr")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "grabarr")
}

const defaultConfigTemplate = `# config.toml

# Hostname / IP
#
# Default: "localhost"
#
host = "localhost"

# Port
#
# Default: 7878
#
port = 7878

# Log level
#
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
#
# Default: "INFO"
#
logLevel = "INFO"

# Log path
#
# Optional. Leave empty to log to stderr only.
#
#logPath = "log/grabarr.log"

# Database path
#
# Optional. Defaults to a grabarr.db next to this file.
#
#databasePath = "grabarr.db"

# Download client poll interval in seconds
#
# Default: 30
#
pollIntervalSeconds = 30

# Failed download retries before giving up
#
# Default: 3
#
maxDownloadRetries = 3

# Prometheus metrics endpoint
#
# Default: false
#
metricsEnabled = false
metricsHost = "127.0.0.1"
metricsPort = 9074

# Download clients
#
#[[downloadClients]]
#id = 1
#name = "qbittorrent"
#host = "http://localhost:8080"
#username = "admin"
#password = "adminadmin"
`
