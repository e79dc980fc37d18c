package runner

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/entrhq/uiverify/pkg/browser"
)

const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// LaunchFunc acquires a fresh session for one run.
type LaunchFunc func(ctx context.Context, opts browser.SessionOptions) (Driver, error)

// Scenario is a fixed, ordered list of steps run against one session.
type Scenario struct {
	Name    string
	Session browser.SessionOptions
	Steps   []Step

	// FailureScreenshot, when set, receives a best-effort viewport capture
	// after a failed step. The path is used as given.
	FailureScreenshot string
}

// Result summarizes one run.
type Result struct {
	Scenario       string
	Status         string
	Error          string
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	StepsCompleted int
	StepsTotal     int
	Artifacts      []string
}

// Options configures a Runner.
type Options struct {
	BaseURL      string
	OutputDir    string
	ConsoleLevel browser.ConsoleLevel

	// Timeout bounds each run; zero means no run-level deadline
	Timeout time.Duration
}

// Runner executes scenarios one step at a time. Each run owns exactly one
// session, which is closed once on every exit path.
type Runner struct {
	launch  LaunchFunc
	baseURL *url.URL
	opts    Options
	log     *Logger
}

// New creates a runner.
func New(launch LaunchFunc, opts Options, log *Logger) (*Runner, error) {
	if launch == nil {
		return nil, fmt.Errorf("launch function is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", opts.BaseURL)
	}
	if log == nil {
		log = NewLogger(LogLevelNormal)
	}
	return &Runner{launch: launch, baseURL: base, opts: opts, log: log}, nil
}

// Run executes sc. The returned Result is always non-nil; the error is the
// first failure (a *StepError once the session is up) or nil.
func (r *Runner) Run(ctx context.Context, sc Scenario) (*Result, error) {
	res := &Result{
		Scenario:   sc.Name,
		Status:     StatusRunning,
		StartTime:  time.Now(),
		StepsTotal: len(sc.Steps),
	}

	r.log.Header("Scenario: " + sc.Name)

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	err := r.runSession(ctx, sc, res)

	res.EndTime = time.Now()
	res.Duration = res.EndTime.Sub(res.StartTime)
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
	} else {
		res.Status = StatusSuccess
	}
	r.log.Summary(res)
	return res, err
}

func (r *Runner) runSession(ctx context.Context, sc Scenario, res *Result) error {
	if len(sc.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", sc.Name)
	}

	drv, err := r.launch(ctx, sc.Session)
	if err != nil {
		r.log.Errorf("failed to start browser session: %v", err)
		return fmt.Errorf("failed to start browser session: %w", err)
	}
	if drv == nil {
		return fmt.Errorf("failed to start browser session: launcher returned no session")
	}

	env := &Env{
		Driver:    drv,
		BaseURL:   r.baseURL,
		OutputDir: r.opts.OutputDir,
		Log:       r.log,
	}

	// Runs on success, on step failure and while a panic unwinds.
	defer func() {
		res.Artifacts = env.artifacts
		if cerr := drv.Close(); cerr != nil {
			r.log.Warningf("closing browser session: %v", cerr)
		}
		r.log.Verbosef("browser session closed")
	}()

	drv.ObserveConsole(r.opts.ConsoleLevel, r.log.Console, r.log.ConsoleTrace)

	for i, step := range sc.Steps {
		if cerr := ctx.Err(); cerr != nil {
			return r.fail(env, sc, &StepError{Index: i + 1, Step: step.String(), Err: kindError(ErrAborted, cerr)})
		}

		r.log.Step(step.String())
		if serr := step.Run(ctx, env); serr != nil {
			return r.fail(env, sc, &StepError{Index: i + 1, Step: step.String(), Err: serr})
		}
		res.StepsCompleted++
	}
	return nil
}

// fail logs the step error and takes the optional diagnostic capture.
func (r *Runner) fail(env *Env, sc Scenario, serr *StepError) error {
	r.log.Errorf("%v", serr)
	if errors.Is(serr, browser.ErrTimeout) {
		r.log.Verbosef("last location: %s", env.Driver.URL())
	}
	if outline, err := env.Driver.Outline(browser.DefaultOutlineLines); err == nil {
		r.log.Debugf("page at failure (%s):\n%s", env.Driver.URL(), outline)
	}

	if sc.FailureScreenshot == "" {
		return serr
	}
	if _, err := env.Driver.Screenshot(browser.ScreenshotOptions{Path: sc.FailureScreenshot}); err != nil {
		r.log.Warningf("diagnostic screenshot failed: %v", err)
		return serr
	}
	r.log.Infof("Screenshot saved to %s", sc.FailureScreenshot)
	return serr
}

// RunAll runs every scenario in order, each in its own session, and keeps
// going after failures. The error joins every failed run.
func (r *Runner) RunAll(ctx context.Context, scenarios []Scenario) ([]*Result, error) {
	results := make([]*Result, 0, len(scenarios))
	var errs []error
	for i, sc := range scenarios {
		r.log.Section(fmt.Sprintf("Run %d of %d: %s", i+1, len(scenarios), sc.Name))
		if err := ctx.Err(); err != nil {
			errs = append(errs, kindError(ErrAborted, err))
			break
		}
		res, err := r.Run(ctx, sc)
		results = append(results, res)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sc.Name, err))
		}
	}
	return results, errors.Join(errs...)
}
