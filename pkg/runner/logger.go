package runner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/uiverify/pkg/browser"
	"github.com/entrhq/uiverify/pkg/logging"
)

// LogLevel represents the console verbosity level
type LogLevel int

const (
	// LogLevelQuiet shows only errors, warnings and the final summary
	LogLevelQuiet LogLevel = iota
	// LogLevelNormal shows captures, skips and checkpoints (default)
	LogLevelNormal
	// LogLevelVerbose also numbers every step
	LogLevelVerbose
	// LogLevelDebug shows all internal details for debugging
	LogLevelDebug
)

// ParseLogLevel converts a verbosity string to a LogLevel.
func ParseLogLevel(level string) LogLevel {
	switch level {
	case "quiet":
		return LogLevelQuiet
	case "verbose":
		return LogLevelVerbose
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelNormal
	}
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("217"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Logger prints run progress to the console and mirrors each line into the
// debug log file when one is attached. It is safe for concurrent use; console
// observers write from their own goroutine.
type Logger struct {
	mu     sync.Mutex
	level  LogLevel
	writer io.Writer
	debug  *logging.Logger

	stepCount int
}

// NewLogger creates a console logger writing to stdout.
func NewLogger(level LogLevel) *Logger {
	return &Logger{level: level, writer: os.Stdout}
}

// SetOutput redirects console output.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// WithDebugLog mirrors every line into a file logger.
func (l *Logger) WithDebugLog(d *logging.Logger) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = d
	return l
}

func (l *Logger) print(min LogLevel, style lipgloss.Style, line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level >= min {
		fmt.Fprintln(l.writer, style.Render(line))
	}
}

// Header prints a prominent header message
func (l *Logger) Header(message string) {
	l.mu.Lock()
	l.stepCount = 0
	l.mu.Unlock()

	rule := strings.Repeat("=", 70)
	l.print(LogLevelNormal, headerStyle, "\n"+rule+"\n  "+message+"\n"+rule)
	l.mirror(logging.LevelInfo, "=== %s ===", message)
}

// Section prints a section divider
func (l *Logger) Section(title string) {
	l.print(LogLevelNormal, stepStyle, "\n▶ "+title)
	l.print(LogLevelNormal, mutedStyle, strings.Repeat("─", 50))
	l.mirror(logging.LevelInfo, "--- %s ---", title)
}

// Step prints a numbered step (verbose only)
func (l *Logger) Step(message string) {
	l.mu.Lock()
	l.stepCount++
	n := l.stepCount
	l.mu.Unlock()

	l.print(LogLevelVerbose, stepStyle, fmt.Sprintf("[%d] %s", n, message))
	l.mirror(logging.LevelDebug, "step %d: %s", n, message)
}

// Successf prints a success message with checkmark
func (l *Logger) Successf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.print(LogLevelNormal, successStyle, "✓ "+msg)
	l.mirror(logging.LevelInfo, "%s", msg)
}

// Infof prints an informational message
func (l *Logger) Infof(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.print(LogLevelNormal, infoStyle, msg)
	l.mirror(logging.LevelInfo, "%s", msg)
}

// Warningf prints a warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.print(LogLevelQuiet, warnStyle, "⚠ Warning: "+msg)
	l.mirror(logging.LevelWarn, "%s", msg)
}

// Errorf prints an error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.print(LogLevelQuiet, errorStyle, "✗ Error: "+msg)
	l.mirror(logging.LevelError, "%s", msg)
}

// Verbosef prints detailed information (only in verbose mode)
func (l *Logger) Verbosef(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.print(LogLevelVerbose, mutedStyle, "→ "+msg)
	l.mirror(logging.LevelDebug, "%s", msg)
}

// Debugf prints debug information (only in debug mode)
func (l *Logger) Debugf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.print(LogLevelDebug, mutedStyle, "[DEBUG] "+msg)
	l.mirror(logging.LevelDebug, "%s", msg)
}

// Capture logs a written screenshot
func (l *Logger) Capture(path string, size int) {
	l.print(LogLevelNormal, successStyle, fmt.Sprintf("✓ Captured %s (%s)", path, formatBytes(size)))
	l.mirror(logging.LevelInfo, "captured %s (%d bytes)", path, size)
}

// Console echoes a browser console message that passed the severity filter
func (l *Logger) Console(msg browser.ConsoleMessage) {
	l.print(LogLevelQuiet, warnStyle, fmt.Sprintf("Console %s: %s", msg.Type, msg.Text))
}

// ConsoleTrace records every browser console message in the debug log only
func (l *Logger) ConsoleTrace(msg browser.ConsoleMessage) {
	l.mirror(logging.LevelDebug, "console %s: %s", msg.Type, msg.Text)
}

func (l *Logger) mirror(lv logging.Level, format string, args ...interface{}) {
	l.mu.Lock()
	d := l.debug
	l.mu.Unlock()
	if d == nil {
		return
	}
	switch lv {
	case logging.LevelDebug:
		d.Debugf(format, args...)
	case logging.LevelInfo:
		d.Infof(format, args...)
	case logging.LevelWarn:
		d.Warnf(format, args...)
	default:
		d.Errorf(format, args...)
	}
}

// Summary prints the final result of a run
func (l *Logger) Summary(res *Result) {
	var b strings.Builder
	rule := strings.Repeat("=", 70)

	b.WriteString("\n" + headerStyle.Render(rule) + "\n")
	b.WriteString(headerStyle.Render("  RUN SUMMARY: "+res.Scenario) + "\n")
	b.WriteString(headerStyle.Render(rule) + "\n")

	b.WriteString("  Status: ")
	switch res.Status {
	case StatusSuccess:
		b.WriteString(successStyle.Render("✓ SUCCESS"))
	case StatusFailed:
		b.WriteString(errorStyle.Render("✗ FAILED"))
	default:
		b.WriteString(res.Status)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "  Steps: %d/%d\n", res.StepsCompleted, res.StepsTotal)
	fmt.Fprintf(&b, "  Duration: %s\n", res.Duration.Round(time.Millisecond))

	if len(res.Artifacts) > 0 {
		b.WriteString("\n  Captures:\n")
		for _, a := range res.Artifacts {
			fmt.Fprintf(&b, "    • %s\n", a)
		}
	}

	if res.Error != "" {
		b.WriteString("\n" + errorStyle.Render("  Error Details:") + "\n")
		b.WriteString(errorStyle.Render("    "+res.Error) + "\n")
	}
	b.WriteString(headerStyle.Render(rule) + "\n")

	l.mu.Lock()
	fmt.Fprint(l.writer, b.String())
	l.mu.Unlock()

	l.mirror(logging.LevelInfo, "run %s finished: status=%s steps=%d/%d duration=%s",
		res.Scenario, res.Status, res.StepsCompleted, res.StepsTotal, res.Duration)
}

// formatBytes renders a byte count for humans
func formatBytes(n int) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KiB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1024*1024))
	}
}
