// Package config loads and validates mirror run settings.
//
// Settings start from Default, are overlaid by an optional YAML file, and are
// finally overridden by command line flags in cmd/mirror.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Default values for mirror settings
const (
	DefaultStartURL          = "https://google.com"
	DefaultFollowers         = 5
	DefaultViewportWidth     = 1280
	DefaultViewportHeight    = 720
	DefaultActionTimeout     = 2 * time.Second
	DefaultNavigationTimeout = 30 * time.Second
	DefaultActionInterval    = 10 * time.Millisecond
	DefaultURLInterval       = 100 * time.Millisecond
	DefaultVerbosity         = "normal"

	// MaxFollowers bounds the number of follower windows one run may open
	MaxFollowers = 32
)

// Action kind names accepted in replication.actions
const (
	ActionClick  = "click"
	ActionInput  = "input"
	ActionScroll = "scroll"
)

// Config represents the configuration for a mirror run
type Config struct {
	// StartURL is loaded in every window at startup
	StartURL string `yaml:"start_url" json:"start_url"`

	// Followers is the number of follower windows
	Followers int `yaml:"followers" json:"followers"`

	// Browser launch and per-call settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Replication loop settings
	Replication ReplicationConfig `yaml:"replication" json:"replication"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BrowserConfig defines how windows are launched and driven
type BrowserConfig struct {
	Headless          bool          `yaml:"headless" json:"headless"`
	Channel           string        `yaml:"channel" json:"channel"` // e.g. "chrome", "msedge"; empty uses bundled chromium
	ViewportWidth     int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight    int           `yaml:"viewport_height" json:"viewport_height"`
	ActionTimeout     time.Duration `yaml:"action_timeout" json:"action_timeout"`         // bound on each follower click/fill/scroll
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"` // bound on each follower navigation
	SkipInstall       bool          `yaml:"skip_install" json:"skip_install"`             // skip the driver/browser download check
}

// ReplicationConfig defines the polling loops
type ReplicationConfig struct {
	ActionInterval time.Duration `yaml:"action_interval" json:"action_interval"`
	URLInterval    time.Duration `yaml:"url_interval" json:"url_interval"`
	Actions        []string      `yaml:"actions" json:"actions"`         // kinds to replicate
	IgnoreURLs     []string      `yaml:"ignore_urls" json:"ignore_urls"` // glob patterns never propagated to followers
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls console output: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`

	// Dir is the session log directory (default ~/.mirror/logs)
	Dir string `yaml:"dir" json:"dir"`

	// File enables the session log file
	File bool `yaml:"file" json:"file"`
}

// Default returns a configuration with every setting at its documented default.
func Default() *Config {
	return &Config{
		StartURL:  DefaultStartURL,
		Followers: DefaultFollowers,
		Browser: BrowserConfig{
			ViewportWidth:     DefaultViewportWidth,
			ViewportHeight:    DefaultViewportHeight,
			ActionTimeout:     DefaultActionTimeout,
			NavigationTimeout: DefaultNavigationTimeout,
		},
		Replication: ReplicationConfig{
			ActionInterval: DefaultActionInterval,
			URLInterval:    DefaultURLInterval,
			Actions:        []string{ActionClick, ActionInput, ActionScroll},
		},
		Logging: LoggingConfig{
			Verbosity: DefaultVerbosity,
			File:      true,
		},
	}
}

// Load reads a YAML configuration file on top of the defaults.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return fmt.Errorf("start URL is required")
	}
	u, err := url.Parse(c.StartURL)
	if err != nil {
		return fmt.Errorf("invalid start URL: %w", err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("start URL must be absolute (include a scheme such as https://), got %q", c.StartURL)
	}

	if c.Followers < 1 || c.Followers > MaxFollowers {
		return fmt.Errorf("followers must be between 1 and %d, got %d", MaxFollowers, c.Followers)
	}

	if err := c.Browser.validate(); err != nil {
		return err
	}
	if err := c.Replication.validate(); err != nil {
		return err
	}
	return c.Logging.validate()
}

func (b *BrowserConfig) validate() error {
	if b.ViewportWidth <= 0 || b.ViewportHeight <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", b.ViewportWidth, b.ViewportHeight)
	}
	if b.ActionTimeout <= 0 {
		return fmt.Errorf("action_timeout must be positive, got %v", b.ActionTimeout)
	}
	if b.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation_timeout must be positive, got %v", b.NavigationTimeout)
	}
	return nil
}

func (r *ReplicationConfig) validate() error {
	if r.ActionInterval <= 0 {
		return fmt.Errorf("action_interval must be positive, got %v", r.ActionInterval)
	}
	if r.URLInterval <= 0 {
		return fmt.Errorf("url_interval must be positive, got %v", r.URLInterval)
	}

	for _, action := range r.Actions {
		switch strings.ToLower(strings.TrimSpace(action)) {
		case ActionClick, ActionInput, ActionScroll:
		default:
			return fmt.Errorf("invalid action %q (must be 'click', 'input', or 'scroll')", action)
		}
	}

	for _, pattern := range r.IgnoreURLs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid ignore_urls pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func (l *LoggingConfig) validate() error {
	switch strings.ToLower(l.Verbosity) {
	case "", "quiet", "normal", "verbose", "debug":
		return nil
	default:
		return fmt.Errorf("invalid verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", l.Verbosity)
	}
}
