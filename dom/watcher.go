package dom

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"

	"pageblock/metrics"
)

// Batch sizing bounds for incremental mutation processing. The batch
// grows while processing stays well inside the frame budget and shrinks
// when it approaches it.
const (
	minBatchSize = 8
	maxBatchSize = 256

	// frameBudget is the per-batch time slice, sized to leave most of a
	// 60fps frame to the page itself.
	frameBudget = 8 * time.Millisecond

	// perElementBudget caps analysis of a single inserted subtree. An
	// element exceeding it is skipped, never allowed to stall the batch.
	perElementBudget = 2 * time.Millisecond
)

// WatcherStats accumulates over the watcher's lifetime.
type WatcherStats struct {
	Processed int `json:"processed"`
	Removed   int `json:"removed"`
	Hidden    int `json:"hidden"`
	Skipped   int `json:"skipped"`
	Batches   int `json:"batches"`
}

// Watcher incrementally re-evaluates newly inserted subtrees against the
// token index, so a mutation burst never re-runs the full selector set
// over the whole document. It runs one goroutine fed by Notify; Stop
// detaches it synchronously.
type Watcher struct {
	index     *TokenIndexer
	cache     *selectorCache
	processed *nodeSet
	logger    *slog.Logger

	insertions chan []*html.Node
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once

	mu        sync.Mutex
	active    bool
	started   bool
	stats     WatcherStats
	statsCb   func(WatcherStats)
	batchSize int
	pending   []*html.Node
}

// NewWatcher creates a watcher over the given index.
func NewWatcher(index *TokenIndexer, cache *selectorCache, processed *nodeSet, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		index:      index,
		cache:      cache,
		processed:  processed,
		logger:     logger,
		insertions: make(chan []*html.Node, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		batchSize:  minBatchSize,
	}
}

// Start begins observing. Calling Start on a running or stopped watcher
// is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	w.active = true
	go w.run()
}

// Notify hands the watcher a batch of newly inserted subtree roots. It is
// a no-op once the watcher is stopped.
func (w *Watcher) Notify(nodes []*html.Node) {
	if len(nodes) == 0 || !w.IsActive() {
		return
	}
	select {
	case w.insertions <- nodes:
	case <-w.stop:
	}
}

// Stop detaches the watcher. It is safe to call from any state and any
// number of times; when it returns, no further processing occurs and no
// node references are retained.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		started := w.started
		w.active = false
		w.mu.Unlock()

		close(w.stop)
		if started {
			<-w.done
		}

		w.mu.Lock()
		w.pending = nil
		w.mu.Unlock()
	})
}

// IsActive reports whether the watcher is observing.
func (w *Watcher) IsActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// SetStatsCallback registers fn to receive a stats snapshot after every
// processed batch.
func (w *Watcher) SetStatsCallback(fn func(WatcherStats)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.statsCb = fn
}

// Stats returns a snapshot of the accumulated stats.
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case nodes := <-w.insertions:
			w.mu.Lock()
			w.pending = append(w.pending, nodes...)
			w.mu.Unlock()
			w.drain()
		}
	}
}

// drain processes pending subtree roots in adaptively sized batches.
func (w *Watcher) drain() {
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		w.mu.Lock()
		size := w.batchSize
		if size > len(w.pending) {
			size = len(w.pending)
		}
		batch := w.pending[:size]
		w.pending = w.pending[size:]
		w.mu.Unlock()

		if len(batch) == 0 {
			return
		}

		start := time.Now()
		removed, hidden, skipped := w.processBatch(batch)
		elapsed := time.Since(start)

		w.mu.Lock()
		w.adjustBatchSize(elapsed)
		w.stats.Processed += len(batch)
		w.stats.Removed += removed
		w.stats.Hidden += hidden
		w.stats.Skipped += skipped
		w.stats.Batches++
		snapshot := w.stats
		cb := w.statsCb
		w.mu.Unlock()

		metrics.ElementsRemoved.Add(float64(removed))
		metrics.ElementsHidden.Add(float64(hidden))
		if cb != nil {
			cb(snapshot)
		}
	}
}

// adjustBatchSize grows the batch while processing finishes well under
// budget and shrinks it when a batch approaches the budget. Caller holds
// the mutex.
func (w *Watcher) adjustBatchSize(elapsed time.Duration) {
	switch {
	case elapsed < frameBudget/2:
		w.batchSize *= 2
		if w.batchSize > maxBatchSize {
			w.batchSize = maxBatchSize
		}
	case elapsed > frameBudget*3/4:
		w.batchSize /= 2
		if w.batchSize < minBatchSize {
			w.batchSize = minBatchSize
		}
	}
}

func (w *Watcher) processBatch(batch []*html.Node) (removed, hidden, skipped int) {
	deadline := time.Now().Add(frameBudget)

	for i, root := range batch {
		if time.Now().After(deadline) {
			// Budget gone; push the remainder back for the next batch.
			w.mu.Lock()
			rest := make([]*html.Node, 0, len(batch)-i+len(w.pending))
			rest = append(rest, batch[i:]...)
			rest = append(rest, w.pending...)
			w.pending = rest
			w.mu.Unlock()
			return
		}

		r, h, s := w.processSubtree(root)
		removed += r
		hidden += h
		skipped += s
	}
	return
}

// processSubtree matches only selectors whose tokens are plausibly
// present in the inserted subtree, per the token index. The whole pass
// runs under the processed-set lock: the subtree walk, matching and
// disposal must not interleave with a scan pass over the same tree.
func (w *Watcher) processSubtree(root *html.Node) (removed, hidden, skipped int) {
	w.processed.mu.Lock()
	defer w.processed.mu.Unlock()

	candidates := w.candidateSelectors(root)
	if len(candidates) == 0 {
		return
	}

	start := time.Now()
	for _, raw := range candidates {
		if time.Since(start) > perElementBudget {
			skipped++
			w.logger.Debug("subtree analysis over budget, skipping remainder")
			return
		}

		sel, err := w.cache.compile(raw)
		if err != nil {
			continue
		}
		for _, node := range sel.MatchAll(root) {
			switch dispose(node, w.processed) {
			case disposedRemoved:
				removed++
			case disposedHidden:
				hidden++
			}
		}
	}
	return
}

// candidateSelectors collects the subtree's tokens and gathers every
// selector reachable from them, plus the catch-all set.
func (w *Watcher) candidateSelectors(root *html.Node) []string {
	seen := make(map[string]struct{})
	var candidates []string
	add := func(selectors []string) {
		for _, s := range selectors {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			candidates = append(candidates, s)
		}
	}

	add(w.index.Get(CatchAllToken))

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if w.index.Has(n.Data) {
				add(w.index.Get(n.Data))
			}
			for _, a := range n.Attr {
				switch a.Key {
				case "class":
					for _, cls := range strings.Fields(a.Val) {
						if w.index.Has(cls) {
							add(w.index.Get(cls))
						}
					}
				case "id":
					if w.index.Has(a.Val) {
						add(w.index.Get(a.Val))
					}
				default:
					if w.index.Has(a.Key) {
						add(w.index.Get(a.Key))
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return candidates
}
