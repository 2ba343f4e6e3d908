// Package config provides the configuration system for the voicegate CLI.
//
// Configuration is stored under os.UserConfigDir()/voicegate/:
//
//	~/Library/Application Support/voicegate/config.yaml   (macOS)
//	~/.config/voicegate/config.yaml                       (Linux)
//	%AppData%/voicegate/config.yaml                       (Windows)
//
// The enrollment database lives in a separate data directory, by default
// ~/.local/share/voicegate.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	// appDir is the directory name under os.UserConfigDir().
	appDir = "voicegate"

	// configFile is the configuration filename inside appDir.
	configFile = "config.yaml"
)

// Config holds the CLI configuration. Zero values select the defaults.
type Config struct {
	// DataDir is the directory holding the badger enrollment database.
	DataDir string `yaml:"data_dir,omitempty"`

	// SampleRate is the input audio sample rate in Hz. Supported values
	// are 16000, 44100, and 48000; other rates are resampled offline
	// before feeding voicegate.
	SampleRate int `yaml:"sample_rate,omitempty"`

	// CaptureSeconds is the fixed recording length per sample.
	CaptureSeconds int `yaml:"capture_seconds,omitempty"`

	// SessionTTLMinutes is the absolute session lifetime.
	SessionTTLMinutes int `yaml:"session_ttl_minutes,omitempty"`

	// MaxFailedAttempts is the failure count that triggers a lockout.
	MaxFailedAttempts int `yaml:"max_failed_attempts,omitempty"`

	// LockoutMinutes is how long a locked identifier is refused.
	LockoutMinutes int `yaml:"lockout_minutes,omitempty"`

	// FailureWindowMinutes is how long a failure streak persists.
	FailureWindowMinutes int `yaml:"failure_window_minutes,omitempty"`
}

// Load reads the configuration from the default location. A missing file
// yields a zero Config, not an error.
func Load() (*Config, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine config directory: %w", err)
	}
	return LoadFrom(filepath.Join(base, appDir, configFile))
}

// LoadFrom reads the configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to the default location.
func (c *Config) Save() error {
	base, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("cannot determine config directory: %w", err)
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, configFile), data, 0644)
}

// ResolveDataDir returns the data directory, creating it if needed.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		dir = os.Getenv("VOICEGATE_DATA_DIR")
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "share", "voicegate")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}

// CaptureDuration returns the configured recording length.
func (c *Config) CaptureDuration() time.Duration {
	if c.CaptureSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CaptureSeconds) * time.Second
}

// SessionTTL returns the configured session lifetime.
func (c *Config) SessionTTL() time.Duration {
	if c.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// LockoutDuration returns the configured lockout length.
func (c *Config) LockoutDuration() time.Duration {
	if c.LockoutMinutes <= 0 {
		return 0
	}
	return time.Duration(c.LockoutMinutes) * time.Minute
}

// FailureWindow returns the configured failure streak window.
func (c *Config) FailureWindow() time.Duration {
	if c.FailureWindowMinutes <= 0 {
		return 0
	}
	return time.Duration(c.FailureWindowMinutes) * time.Minute
}
