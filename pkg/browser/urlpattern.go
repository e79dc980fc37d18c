package browser

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// URLPattern matches page URLs against a Playwright-style glob where "*"
// stops at "/", "**" crosses path segments and "{a,b}" picks one of a list.
//
// As in Playwright 1.52 and later, "?" and "[...]" are literal characters so
// query strings can be written as they appear in the URL.
type URLPattern struct {
	raw string
	g   glob.Glob
}

// CompileURLPattern compiles a URL glob such as "**/dashboard.html".
func CompileURLPattern(pattern string) (*URLPattern, error) {
	if pattern == "" {
		return nil, fmt.Errorf("url pattern is required")
	}
	g, err := glob.Compile(escapeLiterals(pattern), '/')
	if err != nil {
		return nil, fmt.Errorf("invalid url pattern %q: %w", pattern, err)
	}
	return &URLPattern{raw: pattern, g: g}, nil
}

// escapeLiterals backslash-escapes "?", "[" and "]". Characters already
// escaped in the pattern are copied as they are.
func escapeLiterals(pattern string) string {
	var b strings.Builder
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '?' || r == '[' || r == ']':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Match reports whether the URL matches the pattern.
func (p *URLPattern) Match(url string) bool {
	return p.g.Match(url)
}

// String returns the source pattern.
func (p *URLPattern) String() string {
	return p.raw
}
