package compiler

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"pageblock/metrics"
	"pageblock/parser"
	"pageblock/rules"
	"pageblock/source"
)

// maxConcurrentFetches bounds how many sources are refreshed at once.
const maxConcurrentFetches = 4

// Compiler runs the full compilation cycle: every source is fetched,
// parsed and converted inside its reserved id range, and the merged
// result replaces the previous one atomically. Rule records are rebuilt
// wholesale each cycle.
type Compiler struct {
	sources   []source.Source
	converter *Converter
	logger    *slog.Logger

	mu         sync.RWMutex
	directives []rules.Directive
	cosmetic   []rules.Rule
}

// sourceResult carries one source's compiled output back to the merge.
type sourceResult struct {
	name       string
	rangeStart int
	directives []rules.Directive
	cosmetic   []rules.Rule
}

// New creates a compiler over the given sources.
func New(sources []source.Source, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{
		sources:   sources,
		converter: NewConverter(logger),
		logger:    logger,
	}
}

// Compile refreshes every source concurrently and swaps in the merged
// directive set. A failing source is logged and skipped; an error is
// returned only when every source failed.
func (c *Compiler) Compile(ctx context.Context) error {
	var (
		mu      sync.Mutex
		results []sourceResult
		failed  []error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for _, src := range c.sources {
		src := src
		g.Go(func() error {
			res, err := c.compileSource(ctx, src)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.logger.Error("failed to compile source", "source", src.Name(), "error", err)
				failed = append(failed, err)
				return nil // other sources keep going
			}
			results = append(results, res)
			return nil
		})
	}
	g.Wait()

	if len(results) == 0 && len(failed) > 0 {
		return errors.Join(failed...)
	}

	// Merge in id order so output is deterministic across cycles.
	sort.Slice(results, func(i, j int) bool {
		return results[i].rangeStart < results[j].rangeStart
	})

	var directives []rules.Directive
	var cosmetic []rules.Rule
	for _, res := range results {
		directives = append(directives, res.directives...)
		cosmetic = append(cosmetic, res.cosmetic...)
		c.logger.Info("compiled source",
			"source", res.name,
			"directives", len(res.directives),
			"cosmetic", len(res.cosmetic))
	}

	c.mu.Lock()
	c.directives = directives
	c.cosmetic = cosmetic
	c.mu.Unlock()

	return nil
}

// compileSource fetches one source and converts its payload inside the
// source's reserved id range.
func (c *Compiler) compileSource(ctx context.Context, src source.Source) (sourceResult, error) {
	payload, err := src.FetchRules(ctx)
	if err != nil {
		return sourceResult{}, err
	}

	var items []Item
	var cosmetic []rules.Rule

	if payload.Text != "" {
		for _, filter := range parser.FilterText(payload.Text) {
			items = append(items, Item{Filter: filter})
		}
	}
	for i := range payload.Rules {
		r := payload.Rules[i]
		// Disabled rules are excluded from both compilation and DOM
		// enforcement.
		if !r.Enabled {
			continue
		}
		if r.Kind() == rules.KindCosmetic {
			cosmetic = append(cosmetic, r)
			continue
		}
		items = append(items, Item{Rule: &r})
	}

	directives, stats := c.converter.Convert(items, src.RuleIDRange())
	metrics.DirectivesCompiled.WithLabelValues(src.Name()).Add(float64(stats.Succeeded))
	metrics.ConversionFailures.WithLabelValues(src.Name()).Add(float64(stats.Failed))

	return sourceResult{
		name:       src.Name(),
		rangeStart: src.RuleIDRange().Start,
		directives: directives,
		cosmetic:   cosmetic,
	}, nil
}

// Directives returns the current compiled network directive set.
func (c *Compiler) Directives() []rules.Directive {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.directives
}

// CosmeticRules returns the current enabled CSS-selector rules.
func (c *Compiler) CosmeticRules() []rules.Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cosmetic
}

// Sources returns the compiler's sources, for the updater.
func (c *Compiler) Sources() []source.Source {
	return c.sources
}
