package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/entrhq/uiverify/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

// SessionManager owns the Playwright driver and every session launched from it.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	playwright  *playwright.Playwright
	maxSessions int
	install     bool
	initialized bool
	log         *logging.Logger
}

// ManagerOption configures a SessionManager.
type ManagerOption func(*SessionManager)

// WithInstall controls whether Initialize downloads the driver and Chromium
// before starting Playwright.
func WithInstall(install bool) ManagerOption {
	return func(m *SessionManager) {
		m.install = install
	}
}

// WithMaxSessions caps the number of concurrently open sessions.
func WithMaxSessions(n int) ManagerOption {
	return func(m *SessionManager) {
		if n > 0 {
			m.maxSessions = n
		}
	}
}

// WithDebugLogger attaches a file logger for session lifecycle events.
func WithDebugLogger(l *logging.Logger) ManagerOption {
	return func(m *SessionManager) {
		m.log = l
	}
}

// NewSessionManager creates a new session manager.
func NewSessionManager(opts ...ManagerOption) *SessionManager {
	m := &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: DefaultMaxSessions,
		install:     true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize starts the Playwright driver.
// This must be called before creating any sessions.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Driver output would interleave with progress lines
	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if m.install {
		if err := playwright.Install(opts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	m.debugf("playwright driver started (install=%v)", m.install)
	return nil
}

// StartSession launches a browser, context and page configured by opts.
func (m *SessionManager) StartSession(name string, opts SessionOptions) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already exists", name)
	}
	if len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("maximum number of sessions (%d) reached", m.maxSessions)
	}
	if !m.initialized {
		return nil, fmt.Errorf("session manager not initialized")
	}

	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	contextOpts, err := buildContextOptions(opts, m.playwright.Devices)
	if err != nil {
		return nil, err
	}

	browser, err := m.playwright.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(contextOpts)
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		_ = context.Close()
		_ = browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(opts.Timeout)

	session := &Session{
		Name:       name,
		Browser:    browser,
		Context:    context,
		Page:       page,
		Headless:   opts.Headless,
		CreatedAt:  time.Now(),
		CurrentURL: "about:blank",
		log:        m.log,
	}
	session.onClose = func() { m.forget(name) }

	m.sessions[name] = session
	m.debugf("session %q started (headless=%v, viewport=%vx%v)", name, opts.Headless,
		contextOpts.Viewport.Width, contextOpts.Viewport.Height)
	return session, nil
}

// buildContextOptions resolves viewport, user agent and device emulation.
func buildContextOptions(opts SessionOptions, devices map[string]*playwright.DeviceDescriptor) (playwright.BrowserNewContextOptions, error) {
	vp := opts.Viewport
	if vp == nil {
		vp = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if err := validateViewport(vp); err != nil {
		return playwright.BrowserNewContextOptions{}, err
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: vp.Width, Height: vp.Height},
	}
	if opts.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(opts.UserAgent)
	}

	if opts.Device == "" {
		return contextOpts, nil
	}

	device, ok := devices[opts.Device]
	if !ok || device == nil {
		return playwright.BrowserNewContextOptions{}, fmt.Errorf("unknown device descriptor: %q", opts.Device)
	}
	if device.Viewport != nil {
		contextOpts.Viewport = &playwright.Size{Width: device.Viewport.Width, Height: device.Viewport.Height}
	}
	if device.Screen != nil {
		contextOpts.Screen = &playwright.Size{Width: device.Screen.Width, Height: device.Screen.Height}
	}
	if device.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(device.UserAgent)
	}
	if device.DeviceScaleFactor > 0 {
		contextOpts.DeviceScaleFactor = playwright.Float(device.DeviceScaleFactor)
	}
	contextOpts.IsMobile = playwright.Bool(device.IsMobile)
	contextOpts.HasTouch = playwright.Bool(device.HasTouch)
	return contextOpts, nil
}

// validateViewport validates viewport dimensions are within acceptable range.
func validateViewport(vp *Viewport) error {
	if vp.Width < 100 || vp.Width > 5000 {
		return fmt.Errorf("viewport width must be between 100 and 5000 pixels")
	}
	if vp.Height < 100 || vp.Height > 5000 {
		return fmt.Errorf("viewport height must be between 100 and 5000 pixels")
	}
	return nil
}

// forget removes a closed session from the registry.
func (m *SessionManager) forget(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, name)
}

// HasSessions returns true if there are any active sessions.
func (m *SessionManager) HasSessions() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions) > 0
}

// Shutdown closes all sessions and stops Playwright.
func (m *SessionManager) Shutdown() error {
	m.mu.RLock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.RUnlock()

	for _, s := range open {
		if err := s.Close(); err != nil {
			m.debugf("session %q close failed during shutdown: %v", s.Name, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}
	return nil
}

func (m *SessionManager) debugf(format string, v ...interface{}) {
	if m.log != nil {
		m.log.Debugf(format, v...)
	}
}
