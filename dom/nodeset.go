package dom

import (
	"sync"

	"golang.org/x/net/html"
)

// nodeSet is an identity set of element handles scoped to one execution
// pass. Its mutex also serializes access to the document the set tracks:
// a scan pass and the watcher's per-subtree passes each hold mu for the
// whole pass, so tree edits from the watcher goroutine never interleave
// with a concurrent rescan. add/has assume the caller holds mu.
type nodeSet struct {
	mu sync.Mutex
	m  map[*html.Node]struct{}
}

func newNodeSet() *nodeSet {
	return &nodeSet{m: make(map[*html.Node]struct{})}
}

func (s *nodeSet) add(n *html.Node) {
	s.m[n] = struct{}{}
}

func (s *nodeSet) has(n *html.Node) bool {
	_, ok := s.m[n]
	return ok
}

func (s *nodeSet) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[*html.Node]struct{})
}
