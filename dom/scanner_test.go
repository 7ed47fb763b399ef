package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScannerRemovesMatches(t *testing.T) {
	doc := parseDoc(t, `<div class="ad-banner">ad</div><p id="keep">content</p><span class="ad-banner">ad2</span>`)
	sc := NewScanner(doc, []string{".ad-banner"}, newSelectorCache(), newNodeSet(), nil)

	res := sc.Scan()
	assert.Equal(t, 2, res.Removed)
	assert.Zero(t, res.Hidden)
	assert.Zero(t, matchCount(t, doc, ".ad-banner"), "matched elements are removed, not hidden")
	assert.Equal(t, 1, matchCount(t, doc, "#keep"))
}

func TestScannerSkipsInvalidSelector(t *testing.T) {
	doc := parseDoc(t, `<div class="ad">x</div>`)
	sc := NewScanner(doc, []string{"[[broken", ".ad"}, newSelectorCache(), newNodeSet(), nil)

	res := sc.Scan()
	assert.Equal(t, 1, res.Removed, "one malformed selector does not abort the pass")
}

func TestScannerHidesStructuralNodes(t *testing.T) {
	doc := parseDoc(t, `<p>x</p>`)
	sc := NewScanner(doc, []string{"body"}, newSelectorCache(), newNodeSet(), nil)

	res := sc.Scan()
	assert.Zero(t, res.Removed)
	assert.Equal(t, 1, res.Hidden)

	body := findOne(t, doc, "body")
	var style string
	for _, a := range body.Attr {
		if a.Key == "style" {
			style = a.Val
		}
	}
	assert.Contains(t, style, "display:none")
}

func TestScannerProcessedSetPreventsDoubleCounting(t *testing.T) {
	doc := parseDoc(t, `<div class="ad">x</div>`)
	processed := newNodeSet()
	sc := NewScanner(doc, []string{".ad", "div.ad"}, newSelectorCache(), processed, nil)

	res := sc.Scan()
	assert.Equal(t, 1, res.Removed, "two selectors matching one node count it once")

	res = sc.Scan()
	assert.Zero(t, res.Removed, "a second pass finds nothing new")
}
