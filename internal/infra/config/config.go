// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Qobuz    QobuzConfig    `yaml:"qobuz"`
	Playback PlaybackConfig `yaml:"playback"`
	Audio    AudioConfig    `yaml:"audio"`
	Resume   ResumeConfig   `yaml:"resume"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr  string `yaml:"addr" default:":9888"`
	Token string `yaml:"token"` // Optional bearer token required for mutating actions
}

// QobuzConfig represents catalog API credentials.
type QobuzConfig struct {
	AppID     string `yaml:"app_id" validate:"required"`
	AppSecret string `yaml:"app_secret"`
	UserToken string `yaml:"user_token" validate:"required"`
	BaseURL   string `yaml:"base_url"` // Override for testing; empty uses the production API
}

// PlaybackConfig represents player configuration.
type PlaybackConfig struct {
	JumpIntervalSec int `yaml:"jump_interval_sec" default:"10" validate:"gte=1,lte=300"`
	PositionTickMs  int `yaml:"position_tick_ms" default:"1000" validate:"gte=100,lte=10000"`
	FetchTimeoutSec int `yaml:"fetch_timeout_sec" default:"15" validate:"gte=1,lte=120"`
	BufferSize      int `yaml:"buffer_size" default:"64" validate:"gte=1"` // Per-subscriber notification buffer
}

// AudioConfig represents the audio backend selection.
type AudioConfig struct {
	Backend  string         `yaml:"backend" default:"null" validate:"required"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// ResumeConfig represents resume-state persistence.
type ResumeConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path"` // Override; empty uses the XDG state directory
}

// Load loads configuration from a YAML file. Environment variables take
// precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("QOBUZ_APP_ID"); v != "" {
		c.Qobuz.AppID = v
	}
	if v := os.Getenv("QOBUZ_APP_SECRET"); v != "" {
		c.Qobuz.AppSecret = v
	}
	if v := os.Getenv("QOBUZ_USER_TOKEN"); v != "" {
		c.Qobuz.UserToken = v
	}
	if v := os.Getenv("API_TOKEN"); v != "" {
		c.Server.Token = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// JumpInterval returns the jump increment as a duration.
func (c *Config) JumpInterval() time.Duration {
	return time.Duration(c.Playback.JumpIntervalSec) * time.Second
}

// PositionTick returns the position notification interval as a duration.
func (c *Config) PositionTick() time.Duration {
	return time.Duration(c.Playback.PositionTickMs) * time.Millisecond
}

// FetchTimeout returns the catalog call timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Playback.FetchTimeoutSec) * time.Second
}
