package browser

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionManager_Defaults(t *testing.T) {
	m := NewSessionManager()
	assert.Equal(t, DefaultMaxSessions, m.maxSessions)
	assert.True(t, m.install)
	assert.False(t, m.initialized)
	assert.False(t, m.HasSessions())
}

func TestNewSessionManager_Options(t *testing.T) {
	m := NewSessionManager(WithInstall(false), WithMaxSessions(2))
	assert.False(t, m.install)
	assert.Equal(t, 2, m.maxSessions)

	m = NewSessionManager(WithMaxSessions(0))
	assert.Equal(t, DefaultMaxSessions, m.maxSessions, "non-positive limit keeps the default")
}

func TestStartSession_RequiresInitialize(t *testing.T) {
	m := NewSessionManager()
	_, err := m.StartSession("capture", SessionOptions{Headless: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestShutdown_WithoutInitialize(t *testing.T) {
	m := NewSessionManager()
	assert.NoError(t, m.Shutdown())
}

func TestBuildContextOptions(t *testing.T) {
	devices := map[string]*playwright.DeviceDescriptor{
		"iPhone 12 Pro": {
			UserAgent:         "device-agent",
			Viewport:          &playwright.Size{Width: 390, Height: 664},
			DeviceScaleFactor: 3,
			IsMobile:          true,
			HasTouch:          true,
		},
	}

	tests := []struct {
		name       string
		opts       SessionOptions
		wantWidth  int
		wantHeight int
		wantUA     string
		wantMobile bool
		wantErr    string
	}{
		{
			name:       "default viewport",
			opts:       SessionOptions{},
			wantWidth:  DefaultViewportWidth,
			wantHeight: DefaultViewportHeight,
		},
		{
			name: "mobile profile",
			opts: SessionOptions{
				Viewport:  &Viewport{Width: MobileViewportWidth, Height: MobileViewportHeight},
				UserAgent: MobileUserAgent,
			},
			wantWidth:  390,
			wantHeight: 844,
			wantUA:     MobileUserAgent,
		},
		{
			name: "device descriptor wins",
			opts: SessionOptions{
				Viewport:  &Viewport{Width: 800, Height: 600},
				UserAgent: "explicit",
				Device:    "iPhone 12 Pro",
			},
			wantWidth:  390,
			wantHeight: 664,
			wantUA:     "device-agent",
			wantMobile: true,
		},
		{
			name:    "unknown device",
			opts:    SessionOptions{Device: "Nokia 3310"},
			wantErr: "unknown device",
		},
		{
			name:    "viewport too small",
			opts:    SessionOptions{Viewport: &Viewport{Width: 50, Height: 844}},
			wantErr: "viewport width",
		},
		{
			name:    "viewport too tall",
			opts:    SessionOptions{Viewport: &Viewport{Width: 390, Height: 9000}},
			wantErr: "viewport height",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildContextOptions(tt.opts, devices)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got.Viewport)
			assert.Equal(t, tt.wantWidth, got.Viewport.Width)
			assert.Equal(t, tt.wantHeight, got.Viewport.Height)

			if tt.wantUA == "" {
				assert.Nil(t, got.UserAgent)
			} else {
				require.NotNil(t, got.UserAgent)
				assert.Equal(t, tt.wantUA, *got.UserAgent)
			}

			if tt.wantMobile {
				require.NotNil(t, got.IsMobile)
				assert.True(t, *got.IsMobile)
				require.NotNil(t, got.DeviceScaleFactor)
				assert.Equal(t, 3.0, *got.DeviceScaleFactor)
			}
		})
	}
}
