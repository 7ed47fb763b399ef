package dom

import (
	"sync"

	"github.com/andybalholm/cascadia"
)

// selectorCache compiles CSS selectors lazily and remembers both
// successes and failures, so an invalid selector is reported once and
// skipped cheaply afterwards. Validity is checked here, at use time,
// never at parse time.
type selectorCache struct {
	mu       sync.Mutex
	compiled map[string]cascadia.Selector
	invalid  map[string]error
}

func newSelectorCache() *selectorCache {
	return &selectorCache{
		compiled: make(map[string]cascadia.Selector),
		invalid:  make(map[string]error),
	}
}

func (c *selectorCache) compile(s string) (cascadia.Selector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sel, ok := c.compiled[s]; ok {
		return sel, nil
	}
	if err, ok := c.invalid[s]; ok {
		return nil, err
	}

	sel, err := cascadia.Compile(s)
	if err != nil {
		c.invalid[s] = err
		return nil, err
	}
	c.compiled[s] = sel
	return sel, nil
}
