package dom

import (
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// parseDoc builds a document around the given body markup.
func parseDoc(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<html><head></head><body>" + body + "</body></html>"))
	require.NoError(t, err)
	return doc
}

// matchCount counts elements in doc matching the selector.
func matchCount(t *testing.T, doc *html.Node, selector string) int {
	t.Helper()
	sel, err := cascadia.Compile(selector)
	require.NoError(t, err)
	return len(sel.MatchAll(doc))
}

// findOne returns the single element matching selector, failing otherwise.
func findOne(t *testing.T, doc *html.Node, selector string) *html.Node {
	t.Helper()
	sel, err := cascadia.Compile(selector)
	require.NoError(t, err)
	nodes := sel.MatchAll(doc)
	require.Len(t, nodes, 1, "selector %q", selector)
	return nodes[0]
}

// styleText returns the concatenated text of injected stylesheet nodes.
func styleText(doc *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "style" {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sb.String()
}
