package dom

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"pageblock/metrics"
)

// ScanResult reports what one pass over the document did.
type ScanResult struct {
	Removed int `json:"removed"`
	Hidden  int `json:"hidden"`
}

// Scanner walks the current document once and removes elements matching
// enabled selectors. The removal policy is remove outright; hiding is the
// job of the bulk CSS pass and is used here only for elements that cannot
// be detached.
type Scanner struct {
	doc       *html.Node
	selectors []string
	cache     *selectorCache
	processed *nodeSet
	logger    *slog.Logger
}

// NewScanner creates a scanner over doc for the given selector set.
func NewScanner(doc *html.Node, selectors []string, cache *selectorCache, processed *nodeSet, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		doc:       doc,
		selectors: selectors,
		cache:     cache,
		processed: processed,
		logger:    logger,
	}
}

// Scan evaluates every selector against the document. Selector validity
// is checked lazily here; one malformed selector is skipped, it never
// aborts the pass. The pass holds the processed-set lock throughout so
// it never observes the tree mid-edit by the watcher goroutine.
func (s *Scanner) Scan() ScanResult {
	s.processed.mu.Lock()
	defer s.processed.mu.Unlock()

	var res ScanResult
	doc := goquery.NewDocumentFromNode(s.doc)

	for _, raw := range s.selectors {
		sel, err := s.cache.compile(raw)
		if err != nil {
			s.logger.Debug("skipping invalid selector", "selector", raw, "error", err)
			continue
		}

		doc.FindMatcher(sel).Each(func(_ int, match *goquery.Selection) {
			for _, node := range match.Nodes {
				switch dispose(node, s.processed) {
				case disposedRemoved:
					res.Removed++
				case disposedHidden:
					res.Hidden++
				}
			}
		})
	}

	metrics.ElementsRemoved.Add(float64(res.Removed))
	metrics.ElementsHidden.Add(float64(res.Hidden))
	return res
}

type disposition int

const (
	disposedNone disposition = iota
	disposedRemoved
	disposedHidden
)

// dispose removes a matched element, or hides it when it is a structural
// node that cannot be detached. Elements already handled in this pass are
// left alone. Caller holds the processed-set lock.
func dispose(node *html.Node, processed *nodeSet) disposition {
	if node == nil || node.Type != html.ElementNode {
		return disposedNone
	}
	if processed.has(node) {
		return disposedNone
	}
	processed.add(node)

	if node.Parent == nil || node.DataAtom == atom.Html || node.DataAtom == atom.Body || node.DataAtom == atom.Head {
		hideNode(node)
		return disposedHidden
	}

	node.Parent.RemoveChild(node)
	return disposedRemoved
}

func hideNode(node *html.Node) {
	for i, a := range node.Attr {
		if a.Key == "style" {
			node.Attr[i].Val = a.Val + ";display:none !important"
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{
		Key: "style",
		Val: "display:none !important",
	})
}
