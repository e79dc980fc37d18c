package browser

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/uiverify/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

// ErrTimeout marks an operation that did not complete within its bound.
var ErrTimeout = errors.New("timed out")

// Session represents an active browser session with its associated resources.
type Session struct {
	// Name is the unique identifier for this session
	Name string

	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// Page is the current active page
	Page playwright.Page

	// Headless indicates if the browser is running in headless mode
	Headless bool

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time

	// CurrentURL is the URL of the current page
	CurrentURL string

	log       *logging.Logger
	console   *ConsoleObserver
	onClose   func()
	closeOnce sync.Once
	closeErr  error
}

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	playwrightOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil == "" {
		opts.WaitUntil = DefaultWaitUntil
	}
	waitUntil, ok := validWaitStates[opts.WaitUntil]
	if !ok {
		return fmt.Errorf("invalid wait_until value: %s (must be 'load', 'domcontentloaded', or 'networkidle')", opts.WaitUntil)
	}
	playwrightOpts.WaitUntil = waitUntil

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if _, err := s.Page.Goto(url, playwrightOpts); err != nil {
		return wrapTimeout(fmt.Errorf("navigation to %s failed: %w", url, err), err)
	}

	s.CurrentURL = s.Page.URL()
	s.debugf("navigated to %s (wait_until=%s)", s.CurrentURL, opts.WaitUntil)
	return nil
}

// IsVisible reports whether an element matching the selector is currently
// visible. It does not wait; a missing element reports false.
func (s *Session) IsVisible(selector string) (bool, error) {
	visible, err := s.Page.Locator(selector).IsVisible()
	if err != nil {
		return false, fmt.Errorf("visibility check for %s failed: %w", selector, err)
	}
	return visible, nil
}

// Click clicks an element matching the selector.
func (s *Session) Click(opts ClickOptions) error {
	playwrightOpts := playwright.LocatorClickOptions{}
	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if err := s.Page.Locator(opts.Selector).Click(playwrightOpts); err != nil {
		return wrapTimeout(fmt.Errorf("click on %s failed: %w", opts.Selector, err), err)
	}

	// Click may have caused navigation
	s.CurrentURL = s.Page.URL()
	return nil
}

// Fill fills an input element with the specified value.
func (s *Session) Fill(opts FillOptions) error {
	playwrightOpts := playwright.LocatorFillOptions{}
	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if err := s.Page.Locator(opts.Selector).Fill(opts.Value, playwrightOpts); err != nil {
		return wrapTimeout(fmt.Errorf("fill of %s failed: %w", opts.Selector, err), err)
	}
	return nil
}

// Screenshot renders the page to a PNG at opts.Path and returns the image.
func (s *Session) Screenshot(opts ScreenshotOptions) ([]byte, error) {
	playwrightOpts := playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(opts.FullPage),
	}
	if opts.Path != "" {
		playwrightOpts.Path = playwright.String(opts.Path)
	}

	img, err := s.Page.Screenshot(playwrightOpts)
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	s.debugf("screenshot %s (%d bytes, full_page=%v)", opts.Path, len(img), opts.FullPage)
	return img, nil
}

// WaitForURL blocks until the page URL matches the pattern or the timeout elapses.
func (s *Session) WaitForURL(opts URLWaitOptions) error {
	pattern, err := CompileURLPattern(opts.Pattern)
	if err != nil {
		return err
	}

	playwrightOpts := playwright.PageWaitForURLOptions{}
	if opts.Timeout > 0 {
		playwrightOpts.Timeout = playwright.Float(millis(opts.Timeout))
	}

	if err := s.Page.WaitForURL(pattern.Match, playwrightOpts); err != nil {
		return wrapTimeout(fmt.Errorf("waiting for url %s failed (at %s): %w", pattern, s.Page.URL(), err), err)
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// ExpectVisible asserts that the element becomes visible within the timeout.
func (s *Session) ExpectVisible(opts ExpectOptions) error {
	err := s.assertions(opts.Timeout).Locator(s.Page.Locator(opts.Selector)).ToBeVisible()
	if err != nil {
		return fmt.Errorf("expected %s to be visible: %w", opts.Selector, err)
	}
	return nil
}

// ExpectText asserts that the element's text contains opts.Text within the timeout.
func (s *Session) ExpectText(opts ExpectOptions) error {
	err := s.assertions(opts.Timeout).Locator(s.Page.Locator(opts.Selector)).ToContainText(opts.Text)
	if err != nil {
		return fmt.Errorf("expected %s to contain %q: %w", opts.Selector, opts.Text, err)
	}
	return nil
}

func (s *Session) assertions(timeout time.Duration) playwright.PlaywrightAssertions {
	if timeout > 0 {
		return playwright.NewPlaywrightAssertions(millis(timeout))
	}
	return playwright.NewPlaywrightAssertions()
}

// Outline summarizes the current page markup for diagnostics.
func (s *Session) Outline(maxLines int) (*PageOutline, error) {
	content, err := s.Page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}
	return OutlineHTML(content, maxLines)
}

// URL returns the page's current location.
func (s *Session) URL() string {
	return s.Page.URL()
}

// ObserveConsole subscribes to the page's console events. Messages at or above
// min reach handler; trace sees all of them.
func (s *Session) ObserveConsole(min ConsoleLevel, handler, trace ConsoleHandler) {
	if s.console != nil {
		return
	}
	s.console = NewConsoleObserver(min, handler, trace)
	observer := s.console
	s.Page.OnConsole(func(msg playwright.ConsoleMessage) {
		observer.Publish(ConsoleMessage{Type: msg.Type(), Text: msg.Text()})
	})
}

// Close releases the page, context and browser. Only the first call does any
// work; later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.Page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
		if s.console != nil {
			s.console.Stop()
			if n := s.console.Dropped(); n > 0 {
				s.debugf("session %q dropped %d console messages", s.Name, n)
			}
		}
		if err := s.Context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
		if err := s.Browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		if s.onClose != nil {
			s.onClose()
		}
		s.closeErr = errors.Join(errs...)
		s.debugf("session %q closed", s.Name)
	})
	return s.closeErr
}

func (s *Session) debugf(format string, v ...interface{}) {
	if s.log != nil {
		s.log.Debugf(format, v...)
	}
}

// wrapTimeout tags err with ErrTimeout when cause is a Playwright timeout.
func wrapTimeout(err, cause error) error {
	if errors.Is(cause, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
