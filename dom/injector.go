package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// styleMarker identifies the engine's injected stylesheet node.
const styleMarker = "data-pageblock-style"

// StyleInjector bulk-applies CSS-based hiding for enabled selectors with
// one stylesheet write per invocation.
type StyleInjector struct {
	doc      *html.Node
	style    *html.Node
	injected bool
}

// NewStyleInjector creates an injector for the given document.
func NewStyleInjector(doc *html.Node) *StyleInjector {
	return &StyleInjector{doc: doc}
}

// Inject writes one <style> element hiding every selector and returns the
// number of selectors injected. A prior injection is replaced.
func (s *StyleInjector) Inject(selectors []string) int {
	if len(selectors) == 0 {
		return 0
	}

	if s.style != nil {
		s.Cleanup()
	}

	css := strings.Join(selectors, ",\n") + " {\n  display: none !important;\n}"

	style := &html.Node{
		Type:     html.ElementNode,
		Data:     "style",
		DataAtom: atom.Style,
		Attr:     []html.Attribute{{Key: styleMarker, Val: "1"}},
	}
	style.AppendChild(&html.Node{
		Type: html.TextNode,
		Data: css,
	})

	parent := findElement(s.doc, atom.Head)
	if parent == nil {
		parent = s.doc
	}
	parent.AppendChild(style)

	s.style = style
	s.injected = true
	return len(selectors)
}

// IsInjected reports whether the stylesheet is currently in the document.
func (s *StyleInjector) IsInjected() bool {
	return s.injected
}

// Cleanup removes the injected stylesheet and resets injected state.
func (s *StyleInjector) Cleanup() {
	if s.style != nil && s.style.Parent != nil {
		s.style.Parent.RemoveChild(s.style)
	}
	s.style = nil
	s.injected = false
}

// findElement returns the first element with the given atom in document
// order, or nil.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
