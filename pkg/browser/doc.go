// Package browser wraps Playwright for scripted page verification.
//
// A SessionManager owns the Playwright driver. Each verification run asks it for
// one Session: a Chromium browser, an isolated context configured with the run's
// viewport, user agent or device descriptor, and a single page.
//
// # Session Lifecycle
//
//  1. Initialize: the manager installs (optionally) and starts the driver
//  2. StartSession: a browser, context and page are created for the run
//  3. Use: Navigate, Click, Fill, Screenshot, WaitForURL and the Expect* assertions
//  4. Close: page, context and browser are released; repeated calls are no-ops
//
// Page operations return errors wrapped with ErrTimeout when Playwright gave up
// waiting, so callers can tell a slow page from a broken one.
//
// # Console Messages
//
// ObserveConsole forwards the page's console events through a ConsoleObserver.
// The observer buffers events and delivers them on its own goroutine, filtered by
// severity, so a slow handler never stalls page operations.
//
// # Example Usage
//
//	manager := NewSessionManager(WithInstall(false))
//	if err := manager.Initialize(); err != nil {
//	    return err
//	}
//	defer manager.Shutdown()
//
//	session, err := manager.StartSession("capture", SessionOptions{
//	    Headless:  true,
//	    Viewport:  &Viewport{Width: MobileViewportWidth, Height: MobileViewportHeight},
//	    UserAgent: MobileUserAgent,
//	})
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	err = session.Navigate("http://localhost:8000/index.html", NavigateOptions{
//	    WaitUntil: "networkidle",
//	})
//	_, err = session.Screenshot(ScreenshotOptions{Path: "homepage.png", FullPage: true})
package browser
