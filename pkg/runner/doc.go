// Package runner executes verification scenarios against a browser session.
//
// A Scenario is a fixed, ordered list of Steps. Runner.Run acquires one
// session through a LaunchFunc, runs the steps in order and stops at the first
// failure. The session is closed exactly once, whether the run succeeded,
// failed, hit the run deadline or was cancelled.
//
// Failures are reported as a *StepError wrapping one of ErrNavigation,
// ErrElement, ErrAssertion, ErrCapture or ErrAborted:
//
//	res, err := r.Run(ctx, sc)
//	if errors.Is(err, runner.ErrAssertion) {
//		// URL or content expectation did not hold
//	}
//
// Progress is printed through Logger, which mirrors every line into the
// per-process debug log when one is attached.
package runner
