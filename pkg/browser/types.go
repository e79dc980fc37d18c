package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// UserAgent overrides the browser's user agent string when set
	UserAgent string

	// Device names a Playwright device descriptor (e.g. "iPhone 12 Pro").
	// When set, its viewport, user agent and mobile flags take precedence.
	Device string

	// Timeout sets the default timeout for operations (in milliseconds)
	Timeout float64
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// ClickOptions configures element clicking behavior.
type ClickOptions struct {
	// Selector identifies the element to click
	Selector string

	// Timeout in milliseconds
	Timeout float64
}

// FillOptions configures form input filling.
type FillOptions struct {
	// Selector identifies the input element
	Selector string

	// Value is the text to fill
	Value string

	// Timeout in milliseconds
	Timeout float64
}

// ScreenshotOptions configures a page capture.
type ScreenshotOptions struct {
	// Path is the file the PNG is written to. Existing files are overwritten.
	Path string

	// FullPage captures the full scrollable page instead of the viewport
	FullPage bool
}

// ExpectOptions configures an auto-retrying assertion on a locator.
type ExpectOptions struct {
	// Selector identifies the element under assertion
	Selector string

	// Text is the expected substring for text assertions
	Text string

	// Timeout bounds the retry window
	Timeout time.Duration
}

// URLWaitOptions configures waiting for the page location.
type URLWaitOptions struct {
	// Pattern is a glob matched against the full URL (e.g. "**/dashboard.html")
	Pattern string

	// Timeout bounds the wait
	Timeout time.Duration
}

// Valid navigation wait states.
var validWaitStates = map[string]*playwright.WaitUntilState{
	"load":             playwright.WaitUntilStateLoad,
	"domcontentloaded": playwright.WaitUntilStateDomcontentloaded,
	"networkidle":      playwright.WaitUntilStateNetworkidle,
}

// Default values for various operations
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultMaxSessions    = 5
	DefaultWaitUntil      = "networkidle"
)

// Mobile profile used for layout captures (iPhone 12 Pro, iOS 14.4 Safari).
const (
	MobileViewportWidth  = 390
	MobileViewportHeight = 844
	MobileUserAgent      = "Mozilla/5.0 (iPhone; CPU iPhone OS 14_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Mobile/15E148 Safari/604.1"
)

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
