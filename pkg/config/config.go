package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/entrhq/uiverify/pkg/browser"
	"github.com/entrhq/uiverify/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration for a verification run
type Config struct {
	// BaseURL is where the application under test is already being served
	BaseURL string `yaml:"base_url" json:"base_url"`

	// OutputDir receives layout captures
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Browser behavior
	Headless        bool `yaml:"headless" json:"headless"`
	InstallBrowsers bool `yaml:"install_browsers" json:"install_browsers"`

	// Timeout bounds a whole scenario run
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// ActionTimeout is the default bound for each page operation
	ActionTimeout time.Duration `yaml:"action_timeout" json:"action_timeout"`

	// ConsoleLevel is the lowest browser console severity echoed to the console
	ConsoleLevel string `yaml:"console_level" json:"console_level"`

	// Device profile for layout captures
	Device DeviceConfig `yaml:"device" json:"device"`

	// Layout capture settings
	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// Registration/login flow settings
	Login LoginConfig `yaml:"login" json:"login"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// DeviceConfig describes the emulated handset.
type DeviceConfig struct {
	// Name selects a Playwright device descriptor and overrides the fields below
	Name      string `yaml:"name" json:"name"`
	Width     int    `yaml:"width" json:"width"`
	Height    int    `yaml:"height" json:"height"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// CaptureConfig defines the before/after layout capture flow.
type CaptureConfig struct {
	// Settle is the pause after each navigation in the "after" phase, giving
	// client-side component loaders time to render
	Settle time.Duration `yaml:"settle" json:"settle"`

	// MenuSelector identifies the mobile menu toggle
	MenuSelector string `yaml:"menu_selector" json:"menu_selector"`

	// MenuSettle covers the menu open animation
	MenuSettle time.Duration `yaml:"menu_settle" json:"menu_settle"`
}

// LoginConfig defines the registration/login flow.
type LoginConfig struct {
	EmailDomain       string        `yaml:"email_domain" json:"email_domain"`
	Password          string        `yaml:"password" json:"password"`
	URLTimeout        time.Duration `yaml:"url_timeout" json:"url_timeout"`
	FailureScreenshot string        `yaml:"failure_screenshot" json:"failure_screenshot"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls console output: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`

	// FileLevel is the lowest level written to the debug log file: debug, info, warn, error
	FileLevel string `yaml:"file_level" json:"file_level"`

	// Dir overrides the debug log directory (default ~/.uiverify/logs)
	Dir string `yaml:"dir" json:"dir"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base_url: %s (scheme must be http or https)", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base_url: %s (missing host)", c.BaseURL)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	if c.ActionTimeout < 0 {
		return fmt.Errorf("action_timeout cannot be negative")
	}
	if c.Capture.Settle < 0 || c.Capture.MenuSettle < 0 {
		return fmt.Errorf("capture settle delays cannot be negative")
	}
	if c.Login.URLTimeout < 0 {
		return fmt.Errorf("login url_timeout cannot be negative")
	}

	if c.Device.Name == "" {
		if c.Device.Width <= 0 || c.Device.Height <= 0 {
			return fmt.Errorf("device width and height must be positive")
		}
	}

	if _, err := browser.ParseConsoleLevel(c.ConsoleLevel); err != nil {
		return err
	}

	if c.Login.Password == "" {
		return fmt.Errorf("login password is required")
	}
	if c.Login.EmailDomain == "" {
		return fmt.Errorf("login email_domain is required")
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	if _, err := logging.ParseLevel(c.Logging.FileLevel); err != nil {
		return fmt.Errorf("invalid logging file_level: %w", err)
	}

	return nil
}

// MobileSession returns the session options for layout captures.
func (c *Config) MobileSession() browser.SessionOptions {
	opts := browser.SessionOptions{
		Headless:  c.Headless,
		UserAgent: c.Device.UserAgent,
		Device:    c.Device.Name,
		Timeout:   millis(c.ActionTimeout),
	}
	// A named descriptor brings its own viewport
	if c.Device.Name == "" {
		opts.Viewport = &browser.Viewport{Width: c.Device.Width, Height: c.Device.Height}
	}
	return opts
}

// DesktopSession returns the session options for the login flow, which runs
// at the browser's default viewport.
func (c *Config) DesktopSession() browser.SessionOptions {
	return browser.SessionOptions{
		Headless: c.Headless,
		Timeout:  millis(c.ActionTimeout),
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// DefaultConfig returns the configuration matching a local dev server on :8000
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "http://localhost:8000",
		OutputDir:       "verification",
		Headless:        true,
		InstallBrowsers: true,
		Timeout:         2 * time.Minute,
		ActionTimeout:   30 * time.Second,
		ConsoleLevel:    "error",
		Device: DeviceConfig{
			Width:     browser.MobileViewportWidth,
			Height:    browser.MobileViewportHeight,
			UserAgent: browser.MobileUserAgent,
		},
		Capture: CaptureConfig{
			Settle:       2 * time.Second,
			MenuSelector: "#mobile-menu-toggle",
			MenuSettle:   500 * time.Millisecond,
		},
		Login: LoginConfig{
			EmailDomain:       "example.com",
			Password:          "password123",
			URLTimeout:        10 * time.Second,
			FailureScreenshot: "login_test_error.png",
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
			FileLevel: "debug",
		},
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
