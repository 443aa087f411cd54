// Package config provides the YAML-based tool configuration, including
// first-run config creation and 0600 permissions.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for serve mode.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level tool configuration.
type Config struct {
	// Patterns are glob patterns selecting the ICS files to validate when
	// no explicit inputs are given on the command line.
	Patterns []string `yaml:"patterns" json:"patterns"`

	// FailOnErrors makes the run exit non-zero when any error-severity
	// finding is produced.
	FailOnErrors bool `yaml:"fail_on_errors" json:"fail_on_errors"`

	// FailOnWarnings makes the run exit non-zero when any warning-severity
	// finding is produced.
	FailOnWarnings bool `yaml:"fail_on_warnings" json:"fail_on_warnings"`

	// ReportPath, if set, is where the aggregated JSON report is written
	// after each run.
	ReportPath string `yaml:"report_path" json:"report_path"`

	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// periodic re-validation in serve mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Timezone is the IANA timezone occurrences are displayed in by the
	// inspect command (e.g. "Europe/Lisbon").
	Timezone string `yaml:"timezone" json:"timezone"`

	// HorizonDays is the number of future days the inspect command expands
	// recurrences over.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all serve
	// mode endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Patterns:       []string{"*.ics"},
		FailOnErrors:   true,
		FailOnWarnings: false,
		ReportPath:     "",
		Listen:         "127.0.0.1:8080",
		RefreshCron:    "*/15 * * * *",
		Timezone:       "UTC",
		HorizonDays:    7,
		LogLevel:       "info",
		BasicAuth:      nil,
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	if c.Patterns == nil {
		c.Patterns = []string{"*.ics"}
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 7
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there (0600,
//     parent directory created) and returned.
//   - If the file exists, it is unmarshaled over the defaults, so absent
//     keys keep their default values (notably fail_on_errors stays true
//     unless explicitly disabled).
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the configuration to path atomically (temp file + rename)
// with 0600 permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".icslint-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
