package dom

import (
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"pageblock/rules"
)

// State is the executor lifecycle position.
type State int

const (
	StateIdle State = iota
	StateExecuting
	StateActive
	StateCleaned
)

// Stats is the aggregate the telemetry consumer reads.
type Stats struct {
	Removed     int           `json:"removed"`
	Hidden      int           `json:"hidden"`
	CSSInjected int           `json:"cssInjected"`
	Tokens      int           `json:"tokens"`
	Watcher     *WatcherStats `json:"watcher,omitempty"`
}

// HybridExecutor orchestrates the cosmetic pipeline over one document:
// bulk CSS hiding, token indexing, one full scan, then incremental
// mutation processing. Each executor exclusively owns its index,
// stylesheet handle and scanner; never share one across documents.
type HybridExecutor struct {
	doc    *html.Node
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	cache     *selectorCache
	processed *nodeSet
	injector  *StyleInjector
	indexer   *TokenIndexer
	scanner   *Scanner
	watcher   *Watcher
	base      Stats
	statsCb   func(Stats)
}

// NewHybridExecutor creates an executor for the given document.
func NewHybridExecutor(doc *html.Node, logger *slog.Logger) *HybridExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridExecutor{
		doc:       doc,
		logger:    logger,
		state:     StateIdle,
		cache:     newSelectorCache(),
		processed: newNodeSet(),
	}
}

// Execute filters the rules to enabled, non-empty selectors scoped to
// domainContext and runs the pipeline over them. With nothing to enforce
// it returns 0 without touching any sub-component. The return value is
// the number of elements removed plus hidden by the initial scan.
func (e *HybridExecutor) Execute(pageRules []rules.Rule, domainContext string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateCleaned || e.state == StateActive {
		return 0
	}
	e.state = StateExecuting

	selectors := e.applicableSelectors(pageRules, domainContext)
	if len(selectors) == 0 {
		e.state = StateIdle
		return 0
	}

	e.injector = NewStyleInjector(e.doc)
	injected := e.injector.Inject(selectors)

	e.indexer = NewTokenIndexer().Build(selectors)

	e.scanner = NewScanner(e.doc, selectors, e.cache, e.processed, e.logger)
	res := e.scanner.Scan()

	e.watcher = NewWatcher(e.indexer, e.cache, e.processed, e.logger)
	e.watcher.SetStatsCallback(e.onWatcherStats)
	e.watcher.Start()

	e.base = Stats{
		Removed:     res.Removed,
		Hidden:      res.Hidden,
		CSSInjected: injected,
		Tokens:      e.indexer.TokenCount(),
	}
	e.state = StateActive

	e.logger.Info("hybrid enforcement active",
		"domain", domainContext,
		"selectors", len(selectors),
		"removed", res.Removed,
		"hidden", res.Hidden)

	return res.Removed + res.Hidden
}

// applicableSelectors keeps enabled cosmetic rules whose domain scope
// covers domainContext. Caller holds the mutex.
func (e *HybridExecutor) applicableSelectors(pageRules []rules.Rule, domainContext string) []string {
	scope := rules.NewScope()
	for i := range pageRules {
		r := &pageRules[i]
		if !r.Enabled || !r.HasSelector() {
			continue
		}
		scope.Add(r)
	}

	seen := make(map[string]struct{})
	var selectors []string
	for _, r := range scope.For(domainContext) {
		sel := strings.TrimSpace(r.Selector)
		if _, ok := seen[sel]; ok {
			continue
		}
		seen[sel] = struct{}{}
		selectors = append(selectors, sel)
	}
	return selectors
}

// Rescan runs another full scanner pass. Before any Execute it returns a
// zeroed result.
func (e *HybridExecutor) Rescan() ScanResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.scanner == nil {
		return ScanResult{}
	}
	res := e.scanner.Scan()
	e.base.Removed += res.Removed
	e.base.Hidden += res.Hidden
	return res
}

// NotifyInserted feeds newly inserted subtree roots to the watcher.
func (e *HybridExecutor) NotifyInserted(nodes []*html.Node) {
	e.mu.Lock()
	w := e.watcher
	e.mu.Unlock()
	if w != nil {
		w.Notify(nodes)
	}
}

// Stats returns the current aggregate, including live watcher counts.
func (e *HybridExecutor) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := e.base
	if e.watcher != nil {
		ws := e.watcher.Stats()
		stats.Watcher = &ws
		stats.Removed += ws.Removed
		stats.Hidden += ws.Hidden
	}
	return stats
}

// SetStatsCallback registers fn to receive the aggregate after every
// watcher batch.
func (e *HybridExecutor) SetStatsCallback(fn func(Stats)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statsCb = fn
}

// IsActive reports whether enforcement is running.
func (e *HybridExecutor) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateActive
}

// Scanner exposes the scanner for collaborators.
func (e *HybridExecutor) Scanner() *Scanner {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scanner
}

// TokenIndexer exposes the token index for collaborators.
func (e *HybridExecutor) TokenIndexer() *TokenIndexer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexer
}

// Cleanup tears the pipeline down in order: watcher first so no callback
// races the teardown, then the index, then the stylesheet, then all
// internal references including the processed-element set.
func (e *HybridExecutor) Cleanup() {
	e.mu.Lock()
	watcher := e.watcher
	e.mu.Unlock()

	// Stop outside the lock: the watcher goroutine takes e.mu in the
	// stats callback.
	if watcher != nil {
		watcher.Stop()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.indexer != nil {
		e.indexer.Clear()
	}
	if e.injector != nil {
		e.injector.Cleanup()
	}
	e.watcher = nil
	e.indexer = nil
	e.injector = nil
	e.scanner = nil
	e.processed.clear()
	e.state = StateCleaned
}

func (e *HybridExecutor) onWatcherStats(WatcherStats) {
	stats := e.Stats()

	e.mu.Lock()
	cb := e.statsCb
	e.mu.Unlock()
	if cb != nil {
		cb(stats)
	}
}
