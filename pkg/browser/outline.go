package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// DefaultOutlineLines bounds the outline logged after a failed step.
const DefaultOutlineLines = 200

// maxOutlineText caps the text shown per element.
const maxOutlineText = 60

// PageOutline is a selector-oriented summary of a page: one line per element
// that carries an id, a form role or a heading, indented by nesting.
type PageOutline struct {
	Title     string
	Lines     []string
	Truncated bool
}

func (o *PageOutline) String() string {
	var b strings.Builder
	if o.Title != "" {
		fmt.Fprintf(&b, "title: %s\n", o.Title)
	}
	for _, line := range o.Lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if o.Truncated {
		b.WriteString("...\n")
	}
	return b.String()
}

// OutlineHTML parses raw page markup and keeps at most maxLines entries.
func OutlineHTML(raw string, maxLines int) (*PageOutline, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if maxLines <= 0 {
		maxLines = DefaultOutlineLines
	}

	o := &PageOutline{}
	w := &outlineWriter{out: o, max: maxLines}
	w.walk(doc, 0)
	return o, nil
}

type outlineWriter struct {
	out *PageOutline
	max int
}

func (w *outlineWriter) walk(n *html.Node, depth int) {
	if w.out.Truncated {
		return
	}
	if n.Type == html.ElementNode {
		tag := n.Data
		switch {
		case tag == "title":
			w.out.Title = strings.TrimSpace(textOf(n))
			return
		case skippedTag(tag):
			return
		case notable(n):
			if len(w.out.Lines) >= w.max {
				w.out.Truncated = true
				return
			}
			w.out.Lines = append(w.out.Lines, strings.Repeat("  ", depth)+describe(n))
			depth++
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, depth)
	}
}

func skippedTag(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "svg", "template":
		return true
	}
	return false
}

// notable reports whether a selector is likely to target n.
func notable(n *html.Node) bool {
	if attr(n, "id") != "" {
		return true
	}
	switch n.Data {
	case "h1", "h2", "h3", "form", "input", "button", "select", "textarea", "a", "nav", "main", "dialog":
		return true
	}
	return false
}

// describe renders n as a CSS-like selector followed by a hint of its text.
func describe(n *html.Node) string {
	var b strings.Builder
	b.WriteString(n.Data)
	if id := attr(n, "id"); id != "" {
		b.WriteString("#" + id)
	}
	for _, key := range []string{"type", "name", "href"} {
		if v := attr(n, key); v != "" {
			fmt.Fprintf(&b, "[%s=%s]", key, v)
		}
	}
	if hidden(n) {
		b.WriteString(" (hidden)")
	}
	if n.Data != "form" && n.Data != "nav" && n.Data != "main" {
		if text := collapse(textOf(n)); text != "" {
			if r := []rune(text); len(r) > maxOutlineText {
				text = string(r[:maxOutlineText]) + "..."
			}
			fmt.Fprintf(&b, " %q", text)
		}
	}
	return b.String()
}

func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "type":
			if a.Val == "hidden" {
				return true
			}
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
			return
		}
		if c.Type == html.ElementNode && skippedTag(c.Data) {
			return
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			collect(ch)
		}
	}
	collect(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
