package runner

import (
	"fmt"
	"os"
	"sync"

	"github.com/entrhq/uiverify/pkg/browser"
)

// fakeDriver records calls and lets tests inject failures per operation.
type fakeDriver struct {
	mu sync.Mutex

	calls      []string
	url        string
	closeCount int

	visible    map[string]bool
	visibleErr error
	failOn     map[string]error // keyed by "<op> <selector|url|pattern>"
	image      []byte
	page       string // markup returned through Outline

	console  browser.ConsoleHandler
	observed bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		url:     "about:blank",
		visible: map[string]bool{},
		failOn:  map[string]error{},
		image:   []byte("\x89PNG fake"),
	}
}

func (f *fakeDriver) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.failOn[op]
}

func (f *fakeDriver) Navigate(url string, opts browser.NavigateOptions) error {
	if err := f.record("navigate " + url); err != nil {
		return err
	}
	f.mu.Lock()
	f.url = url
	f.mu.Unlock()
	return nil
}

func (f *fakeDriver) IsVisible(selector string) (bool, error) {
	_ = f.record("visible " + selector)
	if f.visibleErr != nil {
		return false, f.visibleErr
	}
	return f.visible[selector], nil
}

func (f *fakeDriver) Click(opts browser.ClickOptions) error {
	return f.record("click " + opts.Selector)
}

func (f *fakeDriver) Fill(opts browser.FillOptions) error {
	return f.record(fmt.Sprintf("fill %s=%s", opts.Selector, opts.Value))
}

func (f *fakeDriver) Screenshot(opts browser.ScreenshotOptions) ([]byte, error) {
	if err := f.record("screenshot " + opts.Path); err != nil {
		return nil, err
	}
	if opts.Path != "" && len(f.image) > 0 {
		if err := os.WriteFile(opts.Path, f.image, 0600); err != nil {
			return nil, err
		}
	}
	return f.image, nil
}

func (f *fakeDriver) WaitForURL(opts browser.URLWaitOptions) error {
	return f.record("waitforurl " + opts.Pattern)
}

func (f *fakeDriver) ExpectVisible(opts browser.ExpectOptions) error {
	return f.record("expectvisible " + opts.Selector)
}

func (f *fakeDriver) ExpectText(opts browser.ExpectOptions) error {
	return f.record(fmt.Sprintf("expecttext %s~%s", opts.Selector, opts.Text))
}

func (f *fakeDriver) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url
}

func (f *fakeDriver) Outline(maxLines int) (*browser.PageOutline, error) {
	if f.page == "" {
		return nil, fmt.Errorf("no page loaded")
	}
	return browser.OutlineHTML(f.page, maxLines)
}

func (f *fakeDriver) ObserveConsole(min browser.ConsoleLevel, handler, trace browser.ConsoleHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observed = true
	f.console = handler
}

func (f *fakeDriver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCount++
	return nil
}

func (f *fakeDriver) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeDriver) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCount
}
