// Package scenario defines the built-in verification flows: the before and
// after mobile layout captures and the registration/login round trip.
package scenario

import (
	"fmt"

	"github.com/entrhq/uiverify/pkg/config"
	"github.com/entrhq/uiverify/pkg/runner"
)

// Scenario names accepted on the command line.
const (
	NameCaptureBefore = "capture-before"
	NameCaptureAfter  = "capture-after"
	NameLogin         = "login"
	NameAll           = "all"
)

// Phase labels a layout capture set.
type Phase string

const (
	// PhaseBefore captures the layout as served, without waiting for
	// client-side component loaders
	PhaseBefore Phase = "before"

	// PhaseAfter settles after every navigation so loaded components render
	PhaseAfter Phase = "after"
)

// Page paths relative to the base URL.
const (
	HomePage      = "index.html"
	CoursesPage   = "courses.html"
	AuthPage      = "auth.html"
	DashboardPage = "dashboard.html"
)

// CapturePath returns the file name of a capture for a page and phase,
// e.g. homepage_mobile_before.png.
func CapturePath(page string, phase Phase) string {
	return fmt.Sprintf("%s_mobile_%s.png", page, phase)
}

// Capture builds the mobile layout capture flow for a phase.
func Capture(cfg *config.Config, phase Phase) runner.Scenario {
	settle := cfg.Capture.Settle
	if phase == PhaseBefore {
		settle = 0
	}
	visit := func(path string) runner.Navigate {
		return runner.Navigate{Path: path, WaitUntil: "networkidle", Settle: settle}
	}

	return runner.Scenario{
		Name:    "capture-" + string(phase),
		Session: cfg.MobileSession(),
		Steps: []runner.Step{
			visit(HomePage),
			runner.Capture{Path: CapturePath("homepage", phase), FullPage: true},
			runner.Checkpoint{Message: "Captured Homepage"},

			visit(CoursesPage),
			runner.Capture{Path: CapturePath("courses", phase), FullPage: true},
			runner.Checkpoint{Message: "Captured Courses"},

			visit(HomePage),
			runner.ClickIfVisible{
				Selector: cfg.Capture.MenuSelector,
				Then: []runner.Step{
					runner.Settle{Duration: cfg.Capture.MenuSettle},
					runner.Capture{Path: CapturePath("menu", phase)},
					runner.Checkpoint{Message: "Captured Menu"},
				},
			},
		},
	}
}

// CaptureBefore is Capture(cfg, PhaseBefore).
func CaptureBefore(cfg *config.Config) runner.Scenario {
	return Capture(cfg, PhaseBefore)
}

// CaptureAfter is Capture(cfg, PhaseAfter).
func CaptureAfter(cfg *config.Config) runner.Scenario {
	return Capture(cfg, PhaseAfter)
}

// Login registers a new account with creds, expects the dashboard, then
// returns to the auth page and signs in with the same credentials.
//
// There is no logout step; navigating back to the auth page is enough for the
// app to show the login form.
func Login(cfg *config.Config, creds Credentials) runner.Scenario {
	dashboard := func() []runner.Step {
		return []runner.Step{
			runner.WaitForURL{Pattern: "**/" + DashboardPage, Timeout: cfg.Login.URLTimeout},
			runner.ExpectText{Selector: "h1", Text: "Dashboard"},
		}
	}

	steps := []runner.Step{
		runner.Note{Message: "Attempting to register with new user: " + creds.Email},
		runner.Navigate{Path: AuthPage, WaitUntil: "load"},
		runner.Click{Selector: "#toggle-form"},
		runner.ExpectVisible{Selector: "#register-form"},
		runner.FillForm{
			Fields: []runner.Field{
				{Selector: "#register-email", Value: creds.Email},
				{Selector: "#register-password", Value: creds.Password, Secret: true},
			},
			Submit: "#register-form button[type='submit']",
		},
	}
	steps = append(steps, dashboard()...)
	steps = append(steps,
		runner.Checkpoint{Message: "Registration successful. Dashboard loaded."},

		runner.Navigate{Path: AuthPage, WaitUntil: "load"},
		runner.Note{Message: "Attempting to log in with new user: " + creds.Email},
		runner.ExpectVisible{Selector: "#login-form"},
		runner.FillForm{
			Fields: []runner.Field{
				{Selector: "#login-email", Value: creds.Email},
				{Selector: "#login-password", Value: creds.Password, Secret: true},
			},
			Submit: "#login-form button[type='submit']",
		},
	)
	steps = append(steps, dashboard()...)
	steps = append(steps, runner.Checkpoint{Message: "Login successful after registration."})

	return runner.Scenario{
		Name:              NameLogin,
		Session:           cfg.DesktopSession(),
		Steps:             steps,
		FailureScreenshot: cfg.Login.FailureScreenshot,
	}
}

// All returns every built-in flow in run order.
func All(cfg *config.Config, creds Credentials) []runner.Scenario {
	return []runner.Scenario{
		CaptureBefore(cfg),
		CaptureAfter(cfg),
		Login(cfg, creds),
	}
}

// Select resolves a command-line scenario name. Credentials are only drawn
// when a login flow is selected.
func Select(name string, cfg *config.Config, gen *CredentialGenerator) ([]runner.Scenario, error) {
	switch name {
	case NameCaptureBefore:
		return []runner.Scenario{CaptureBefore(cfg)}, nil
	case NameCaptureAfter:
		return []runner.Scenario{CaptureAfter(cfg)}, nil
	case NameLogin:
		return []runner.Scenario{Login(cfg, gen.Next())}, nil
	case NameAll:
		return All(cfg, gen.Next()), nil
	default:
		return nil, fmt.Errorf("unknown scenario: %s (must be '%s', '%s', '%s', or '%s')",
			name, NameCaptureBefore, NameCaptureAfter, NameLogin, NameAll)
	}
}
