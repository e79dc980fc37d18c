package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/entrhq/uiverify/pkg/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.BaseURL = "" },
			wantErr: "base_url is required",
		},
		{
			name:    "base url without scheme",
			mutate:  func(c *Config) { c.BaseURL = "localhost:8000" },
			wantErr: "invalid base_url",
		},
		{
			name:    "base url with file scheme",
			mutate:  func(c *Config) { c.BaseURL = "file:///srv/public" },
			wantErr: "scheme must be http or https",
		},
		{
			name:    "missing output dir",
			mutate:  func(c *Config) { c.OutputDir = "" },
			wantErr: "output_dir is required",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Timeout = -time.Second },
			wantErr: "timeout cannot be negative",
		},
		{
			name:    "negative settle",
			mutate:  func(c *Config) { c.Capture.Settle = -time.Second },
			wantErr: "settle",
		},
		{
			name:    "zero viewport without device",
			mutate:  func(c *Config) { c.Device.Width = 0 },
			wantErr: "device width and height",
		},
		{
			name: "device name replaces dimensions",
			mutate: func(c *Config) {
				c.Device = DeviceConfig{Name: "iPhone 12 Pro"}
			},
		},
		{
			name:    "bad console level",
			mutate:  func(c *Config) { c.ConsoleLevel = "fatal" },
			wantErr: "invalid console level",
		},
		{
			name:    "empty password",
			mutate:  func(c *Config) { c.Login.Password = "" },
			wantErr: "password is required",
		},
		{
			name:    "bad file level",
			mutate:  func(c *Config) { c.Logging.FileLevel = "trace" },
			wantErr: "invalid logging file_level",
		},
		{
			name:    "bad verbosity",
			mutate:  func(c *Config) { c.Logging.Verbosity = "chatty" },
			wantErr: "invalid logging verbosity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateDefaultsVerbosity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Verbosity = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "normal", cfg.Logging.Verbosity)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, "verification", cfg.OutputDir)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 390, cfg.Device.Width)
	assert.Equal(t, 844, cfg.Device.Height)
	assert.Contains(t, cfg.Device.UserAgent, "iPhone")
	assert.Equal(t, "password123", cfg.Login.Password)
	assert.Equal(t, 10*time.Second, cfg.Login.URLTimeout)
	assert.Equal(t, 2*time.Second, cfg.Capture.Settle)
	assert.Equal(t, 500*time.Millisecond, cfg.Capture.MenuSettle)
	assert.Equal(t, "debug", cfg.Logging.FileLevel)
	assert.Empty(t, cfg.Logging.Dir)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uiverify.yaml")
	content := `
base_url: http://127.0.0.1:3000
headless: false
timeout: 45s
device:
  name: iPhone 12 Pro
capture:
  settle: 1500ms
login:
  url_timeout: 5s
logging:
  verbosity: debug
  file_level: warn
  dir: /tmp/uiverify-logs
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:3000", cfg.BaseURL)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, "iPhone 12 Pro", cfg.Device.Name)
	assert.Equal(t, 1500*time.Millisecond, cfg.Capture.Settle)
	assert.Equal(t, 5*time.Second, cfg.Login.URLTimeout)
	assert.Equal(t, "debug", cfg.Logging.Verbosity)
	assert.Equal(t, "warn", cfg.Logging.FileLevel)
	assert.Equal(t, "/tmp/uiverify-logs", cfg.Logging.Dir)

	// Untouched keys keep their defaults
	assert.Equal(t, "verification", cfg.OutputDir)
	assert.Equal(t, "#mobile-menu-toggle", cfg.Capture.MenuSelector)
	assert.Equal(t, "password123", cfg.Login.Password)
	assert.Equal(t, browser.MobileViewportWidth, cfg.Device.Width)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: [not a duration"), 0600))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSessionOptions(t *testing.T) {
	cfg := DefaultConfig()

	mobile := cfg.MobileSession()
	require.NotNil(t, mobile.Viewport)
	assert.Equal(t, 390, mobile.Viewport.Width)
	assert.Equal(t, 844, mobile.Viewport.Height)
	assert.Equal(t, browser.MobileUserAgent, mobile.UserAgent)
	assert.Equal(t, 30000.0, mobile.Timeout)

	cfg.Device = DeviceConfig{Name: "iPhone 12 Pro"}
	named := cfg.MobileSession()
	assert.Nil(t, named.Viewport)
	assert.Equal(t, "iPhone 12 Pro", named.Device)

	desktop := cfg.DesktopSession()
	assert.Nil(t, desktop.Viewport)
	assert.Empty(t, desktop.UserAgent)
	assert.True(t, desktop.Headless)
}
