// Package config loads the shell configuration from config.json and the
// platform credential store.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"
)

// AppConfig holds values loaded from config.json. Token is loaded separately
// from the platform credential store.
type AppConfig struct {
	AppName                 string `json:"app_name"`
	Publisher               string `json:"publisher"`
	ShortcutName            string `json:"shortcut_name"`
	UpdateSource            string `json:"update_source"`
	UpdateCheckDelaySeconds int    `json:"update_check_delay_seconds"`
	LogLevel                string `json:"log_level"`
	Token                   string `json:"-"`
}

const defaultUpdateCheckDelay = 30 * time.Second

// UpdateCheckDelay is how long after activation the background update
// check starts.
func (c AppConfig) UpdateCheckDelay() time.Duration {
	if c.UpdateCheckDelaySeconds < 0 {
		return 0
	}
	if c.UpdateCheckDelaySeconds == 0 {
		return defaultUpdateCheckDelay
	}
	return time.Duration(c.UpdateCheckDelaySeconds) * time.Second
}

// LoadConfig reads filePath on top of defaults. A missing file is not an
// error; the defaults are used as-is. The result must name an update source.
func LoadConfig(filePath string, defaults AppConfig) (AppConfig, error) {
	cfg := defaults

	data, err := os.ReadFile(filePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Info("no config file, using defaults", "path", filePath)
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file '%s': %w", filePath, err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
		}
	}

	cfg.UpdateSource = strings.TrimSpace(cfg.UpdateSource)
	if cfg.UpdateSource == "" {
		return cfg, fmt.Errorf("config file '%s' is missing required field update_source", filePath)
	}
	if cfg.AppName == "" {
		cfg.AppName = defaults.AppName
	}

	token, err := loadToken(cfg.AppName)
	if err != nil {
		// A missing token only matters for private feeds; the check will fail loudly there.
		slog.Warn("failed to load update feed token", "error", err)
	}
	cfg.Token = token

	return cfg, nil
}
