package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStyleInjector(t *testing.T) {
	t.Run("bulk inject", func(t *testing.T) {
		doc := parseDoc(t, "<p>hi</p>")
		inj := NewStyleInjector(doc)

		n := inj.Inject([]string{".ad-banner", "#promo"})
		assert.Equal(t, 2, n)
		assert.True(t, inj.IsInjected())

		css := styleText(doc)
		assert.Contains(t, css, ".ad-banner")
		assert.Contains(t, css, "#promo")
		assert.Contains(t, css, "display: none !important")
		// One stylesheet write, not one per selector.
		assert.Equal(t, 1, matchCount(t, doc, "style"))
	})

	t.Run("empty set injects nothing", func(t *testing.T) {
		doc := parseDoc(t, "")
		inj := NewStyleInjector(doc)

		assert.Zero(t, inj.Inject(nil))
		assert.False(t, inj.IsInjected())
		assert.Zero(t, matchCount(t, doc, "style"))
	})

	t.Run("reinject replaces", func(t *testing.T) {
		doc := parseDoc(t, "")
		inj := NewStyleInjector(doc)

		inj.Inject([]string{".first"})
		inj.Inject([]string{".second"})
		assert.Equal(t, 1, matchCount(t, doc, "style"))
		assert.NotContains(t, styleText(doc), ".first")
		assert.Contains(t, styleText(doc), ".second")
	})

	t.Run("cleanup removes the stylesheet", func(t *testing.T) {
		doc := parseDoc(t, "")
		inj := NewStyleInjector(doc)

		inj.Inject([]string{".ad"})
		inj.Cleanup()
		assert.False(t, inj.IsInjected())
		assert.Zero(t, matchCount(t, doc, "style"))

		// Cleanup is safe to repeat.
		inj.Cleanup()
	})
}
