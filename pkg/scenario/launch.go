package scenario

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/entrhq/uiverify/pkg/browser"
	"github.com/entrhq/uiverify/pkg/runner"
)

// Launcher returns a runner.LaunchFunc that starts a fresh, uniquely named
// session on m for every run.
func Launcher(m *browser.SessionManager) runner.LaunchFunc {
	var seq atomic.Int64
	return func(ctx context.Context, opts browser.SessionOptions) (runner.Driver, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := fmt.Sprintf("run-%d", seq.Add(1))
		s, err := m.StartSession(name, opts)
		if err != nil {
			// A nil *Session must not become a non-nil Driver
			return nil, err
		}
		return s, nil
	}
}
