package rules

import (
	"strings"
	"sync"
)

// trieNode is a node in the reverse-label domain trie.
type trieNode struct {
	children map[string]*trieNode
	// Rules scoped to exactly this domain label path. A rule stored at
	// com->example applies to example.com and all its subdomains.
	rules []*Rule
}

// Scope indexes rules by their domain patterns so enforcement can be
// restricted to the rules that apply to the current page hostname.
// Rules whose Domains contain "*" (or are empty) are unscoped and apply
// everywhere.
type Scope struct {
	mu       sync.RWMutex
	root     *trieNode
	unscoped []*Rule
}

// NewScope creates an empty domain scope index.
func NewScope() *Scope {
	return &Scope{
		root: &trieNode{children: make(map[string]*trieNode)},
	}
}

// Add indexes one rule under each of its domain patterns.
func (s *Scope) Add(rule *Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(rule.Domains) == 0 {
		s.unscoped = append(s.unscoped, rule)
		return
	}

	for _, d := range rule.Domains {
		d = strings.TrimSpace(strings.ToLower(d))
		if d == "" || d == "*" {
			s.unscoped = append(s.unscoped, rule)
			continue
		}

		parts := strings.Split(d, ".")
		node := s.root
		// Insert in reverse order: com -> example
		for i := len(parts) - 1; i >= 0; i-- {
			part := parts[i]
			if node.children[part] == nil {
				node.children[part] = &trieNode{children: make(map[string]*trieNode)}
			}
			node = node.children[part]
		}
		node.rules = append(node.rules, rule)
	}
}

// For returns all rules applying to host: every unscoped rule plus every
// rule stored along the reverse-label path of the hostname, so a rule
// scoped to example.com also matches ads.example.com.
func (s *Scope) For(host string) []*Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	host = strings.TrimSuffix(strings.ToLower(host), ".")

	matched := make([]*Rule, 0, len(s.unscoped))
	matched = append(matched, s.unscoped...)

	if host == "" {
		return matched
	}

	parts := strings.Split(host, ".")
	node := s.root
	for i := len(parts) - 1; i >= 0; i-- {
		node = node.children[parts[i]]
		if node == nil {
			break
		}
		if len(node.rules) > 0 {
			matched = append(matched, node.rules...)
		}
	}

	return matched
}
