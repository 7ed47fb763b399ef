package dom

import (
	"regexp"
	"strings"
)

// CatchAllToken is the reserved key selectors with no extractable tokens
// are registered under. The watcher always re-evaluates catch-all
// selectors against new subtrees, so a selector the tokenizer cannot
// understand is re-scanned rather than silently unmatched.
const CatchAllToken = "*"

var (
	classTokenRe = regexp.MustCompile(`\.(-?[A-Za-z_][A-Za-z0-9_-]*)`)
	idTokenRe    = regexp.MustCompile(`#(-?[A-Za-z_][A-Za-z0-9_-]*)`)
	attrTokenRe  = regexp.MustCompile(`\[\s*([A-Za-z_][A-Za-z0-9_-]*)`)
	attrBlockRe  = regexp.MustCompile(`\[[^\]]*\]`)
	pseudoRe     = regexp.MustCompile(`::?[a-zA-Z-]+(\([^)]*\))?`)
	tagTokenRe   = regexp.MustCompile(`(?:^|[\s>+~,])([a-zA-Z][a-zA-Z0-9]*)`)
)

// ExtractTokens pulls index keys out of a CSS selector on a best-effort
// basis: class fragments (.foo -> foo), id fragments (#Foo -> Foo, case
// preserved), attribute names ([data-x] -> data-x) and tag names. An
// empty or unparsable selector yields no tokens.
func ExtractTokens(selector string) []string {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var tokens []string
	add := func(tok string) {
		if tok == "" {
			return
		}
		if _, ok := seen[tok]; ok {
			return
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}

	for _, m := range classTokenRe.FindAllStringSubmatch(selector, -1) {
		add(m[1])
	}
	for _, m := range idTokenRe.FindAllStringSubmatch(selector, -1) {
		add(m[1])
	}
	for _, m := range attrTokenRe.FindAllStringSubmatch(selector, -1) {
		add(m[1])
	}

	// Tag names are matched against what is left once attribute blocks
	// and pseudo-classes are stripped, so ":hover" or "[href]" content
	// cannot masquerade as a tag.
	stripped := attrBlockRe.ReplaceAllString(selector, " ")
	stripped = pseudoRe.ReplaceAllString(stripped, " ")
	stripped = classTokenRe.ReplaceAllString(stripped, " ")
	stripped = idTokenRe.ReplaceAllString(stripped, " ")
	for _, m := range tagTokenRe.FindAllStringSubmatch(stripped, -1) {
		add(strings.ToLower(m[1]))
	}

	return tokens
}

// TokenIndexer is an inverted index from tokens to the selectors they
// occur in. One token may map to many selectors and one selector is
// reachable from several of its own tokens.
type TokenIndexer struct {
	index map[string][]string
}

// NewTokenIndexer creates an empty index.
func NewTokenIndexer() *TokenIndexer {
	return &TokenIndexer{index: make(map[string][]string)}
}

// Build replaces the index contents with one built over the given
// selectors and returns the indexer for chaining. Selectors yielding no
// tokens go under CatchAllToken.
func (t *TokenIndexer) Build(selectors []string) *TokenIndexer {
	t.index = make(map[string][]string, len(selectors))

	for _, sel := range selectors {
		if strings.TrimSpace(sel) == "" {
			continue
		}
		tokens := ExtractTokens(sel)
		if len(tokens) == 0 {
			tokens = []string{CatchAllToken}
		}
		for _, tok := range tokens {
			t.index[tok] = append(t.index[tok], sel)
		}
	}
	return t
}

// Has reports whether any selector is indexed under token.
func (t *TokenIndexer) Has(token string) bool {
	_, ok := t.index[token]
	return ok
}

// Get returns the selectors indexed under token.
func (t *TokenIndexer) Get(token string) []string {
	return t.index[token]
}

// TokenCount returns the number of distinct tokens in the index.
func (t *TokenIndexer) TokenCount() int {
	return len(t.index)
}

// Clear empties the index.
func (t *TokenIndexer) Clear() {
	t.index = make(map[string][]string)
}
