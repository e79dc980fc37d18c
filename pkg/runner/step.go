package runner

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/uiverify/pkg/browser"
)

// Driver is the page surface a run needs. *browser.Session implements it.
type Driver interface {
	Navigate(url string, opts browser.NavigateOptions) error
	IsVisible(selector string) (bool, error)
	Click(opts browser.ClickOptions) error
	Fill(opts browser.FillOptions) error
	Screenshot(opts browser.ScreenshotOptions) ([]byte, error)
	WaitForURL(opts browser.URLWaitOptions) error
	ExpectVisible(opts browser.ExpectOptions) error
	ExpectText(opts browser.ExpectOptions) error
	URL() string
	Outline(maxLines int) (*browser.PageOutline, error)
	ObserveConsole(min browser.ConsoleLevel, handler, trace browser.ConsoleHandler)
	Close() error
}

// Env is what a step sees while it runs.
type Env struct {
	Driver    Driver
	BaseURL   *url.URL
	OutputDir string
	Log       *Logger

	artifacts []string
}

// Resolve turns a page path into an absolute URL under the base URL.
func (e *Env) Resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid page path %q: %w", path, err)
	}
	base := *e.BaseURL
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(ref).String(), nil
}

// Step is one action of a scenario.
type Step interface {
	// Run performs the step. It must not return until the step's wait
	// condition resolved or failed.
	Run(ctx context.Context, env *Env) error

	String() string
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return kindError(ErrAborted, ctx.Err())
	case <-t.C:
		return nil
	}
}

// Navigate loads a page under the base URL and optionally settles afterwards.
type Navigate struct {
	Path string

	// WaitUntil defaults to "networkidle"
	WaitUntil string

	// Settle is an extra fixed pause for client-side initialization that does
	// not show up as network activity
	Settle time.Duration
}

func (s Navigate) Run(ctx context.Context, env *Env) error {
	target, err := env.Resolve(s.Path)
	if err != nil {
		return kindError(ErrNavigation, err)
	}
	if err := env.Driver.Navigate(target, browser.NavigateOptions{WaitUntil: s.WaitUntil}); err != nil {
		return kindError(ErrNavigation, err)
	}
	env.Log.Verbosef("loaded %s", env.Driver.URL())
	return sleep(ctx, s.Settle)
}

func (s Navigate) String() string {
	if s.Settle > 0 {
		return fmt.Sprintf("navigate %s (settle %s)", s.Path, s.Settle)
	}
	return "navigate " + s.Path
}

// Settle pauses for a fixed duration (animations, component loaders).
type Settle struct {
	Duration time.Duration
}

func (s Settle) Run(ctx context.Context, env *Env) error {
	return sleep(ctx, s.Duration)
}

func (s Settle) String() string {
	return "settle " + s.Duration.String()
}

// Click clicks a required element.
type Click struct {
	Selector string
}

func (s Click) Run(ctx context.Context, env *Env) error {
	if err := env.Driver.Click(browser.ClickOptions{Selector: s.Selector}); err != nil {
		return kindError(ErrElement, err)
	}
	return nil
}

func (s Click) String() string {
	return "click " + s.Selector
}

// ClickIfVisible clicks the element only when it is visible right now and
// then runs Then. A missing or hidden element is skipped, not a failure.
type ClickIfVisible struct {
	Selector string
	Then     []Step
}

func (s ClickIfVisible) Run(ctx context.Context, env *Env) error {
	visible, err := env.Driver.IsVisible(s.Selector)
	if err != nil {
		env.Log.Infof("Skipping %s: %v", s.Selector, err)
		return nil
	}
	if !visible {
		env.Log.Infof("Skipping %s: not visible", s.Selector)
		return nil
	}

	if err := env.Driver.Click(browser.ClickOptions{Selector: s.Selector}); err != nil {
		return kindError(ErrElement, err)
	}
	for _, next := range s.Then {
		if err := ctx.Err(); err != nil {
			return kindError(ErrAborted, err)
		}
		env.Log.Verbosef("%s", next)
		if err := next.Run(ctx, env); err != nil {
			return err
		}
	}
	return nil
}

func (s ClickIfVisible) String() string {
	return "click " + s.Selector + " if visible"
}

// Field is one form input.
type Field struct {
	Selector string
	Value    string

	// Secret hides the value in logs
	Secret bool
}

// FillForm fills fields in order and clicks the submit control. Submit should
// be scoped to its form when a page has several submit buttons.
type FillForm struct {
	Fields []Field
	Submit string
}

func (s FillForm) Run(ctx context.Context, env *Env) error {
	for _, f := range s.Fields {
		if err := env.Driver.Fill(browser.FillOptions{Selector: f.Selector, Value: f.Value}); err != nil {
			return kindError(ErrElement, err)
		}
		value := f.Value
		if f.Secret {
			value = strings.Repeat("*", len(value))
		}
		env.Log.Debugf("filled %s = %s", f.Selector, value)
	}
	if s.Submit == "" {
		return nil
	}
	if err := env.Driver.Click(browser.ClickOptions{Selector: s.Submit}); err != nil {
		return kindError(ErrElement, err)
	}
	return nil
}

func (s FillForm) String() string {
	selectors := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		selectors = append(selectors, f.Selector)
	}
	return fmt.Sprintf("fill %s and submit %s", strings.Join(selectors, ", "), s.Submit)
}

// Capture writes a PNG of the page to Path under the output directory,
// replacing any previous capture.
type Capture struct {
	Path     string
	FullPage bool
}

func (s Capture) Run(ctx context.Context, env *Env) error {
	path := filepath.Join(env.OutputDir, s.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return kindError(ErrCapture, fmt.Errorf("failed to create output directory: %w", err))
	}

	img, err := env.Driver.Screenshot(browser.ScreenshotOptions{Path: path, FullPage: s.FullPage})
	if err != nil {
		return kindError(ErrCapture, err)
	}
	if len(img) == 0 {
		return kindError(ErrCapture, fmt.Errorf("empty image for %s", path))
	}

	env.artifacts = append(env.artifacts, path)
	env.Log.Capture(path, len(img))
	return nil
}

func (s Capture) String() string {
	mode := "viewport"
	if s.FullPage {
		mode = "full page"
	}
	return fmt.Sprintf("capture %s (%s)", s.Path, mode)
}

// WaitForURL waits for the location to match a glob such as "**/dashboard.html".
type WaitForURL struct {
	Pattern string
	Timeout time.Duration
}

func (s WaitForURL) Run(ctx context.Context, env *Env) error {
	err := env.Driver.WaitForURL(browser.URLWaitOptions{Pattern: s.Pattern, Timeout: s.Timeout})
	if err != nil {
		return kindError(ErrAssertion, err)
	}
	return nil
}

func (s WaitForURL) String() string {
	return fmt.Sprintf("wait for url %s (%s)", s.Pattern, s.Timeout)
}

// ExpectVisible asserts that an element becomes visible.
type ExpectVisible struct {
	Selector string
	Timeout  time.Duration
}

func (s ExpectVisible) Run(ctx context.Context, env *Env) error {
	if err := env.Driver.ExpectVisible(browser.ExpectOptions{Selector: s.Selector, Timeout: s.Timeout}); err != nil {
		return kindError(ErrAssertion, err)
	}
	return nil
}

func (s ExpectVisible) String() string {
	return "expect " + s.Selector + " visible"
}

// ExpectText asserts that an element's text contains Text.
type ExpectText struct {
	Selector string
	Text     string
	Timeout  time.Duration
}

func (s ExpectText) Run(ctx context.Context, env *Env) error {
	err := env.Driver.ExpectText(browser.ExpectOptions{Selector: s.Selector, Text: s.Text, Timeout: s.Timeout})
	if err != nil {
		return kindError(ErrAssertion, err)
	}
	return nil
}

func (s ExpectText) String() string {
	return fmt.Sprintf("expect %s to contain %q", s.Selector, s.Text)
}

// Checkpoint prints a success line once everything before it passed.
type Checkpoint struct {
	Message string
}

func (s Checkpoint) Run(ctx context.Context, env *Env) error {
	env.Log.Successf("%s", s.Message)
	return nil
}

func (s Checkpoint) String() string {
	return "checkpoint"
}

// Note prints an informational line.
type Note struct {
	Message string
}

func (s Note) Run(ctx context.Context, env *Env) error {
	env.Log.Infof("%s", s.Message)
	return nil
}

func (s Note) String() string {
	return "note"
}
