// Package metrics exposes the engine's counters for hosts that scrape
// prometheus. Registration uses the default registry; the engine works
// the same with no scraper attached.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DirectivesCompiled counts network directives produced per source.
	DirectivesCompiled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pageblock_directives_compiled_total",
		Help: "Network directives compiled, by source.",
	}, []string{"source"})

	// ConversionFailures counts rule items that could not be converted.
	ConversionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pageblock_conversion_failures_total",
		Help: "Rule items that failed conversion, by source.",
	}, []string{"source"})

	// ElementsRemoved counts DOM elements removed by the scanner and watcher.
	ElementsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pageblock_elements_removed_total",
		Help: "DOM elements removed by cosmetic enforcement.",
	})

	// ElementsHidden counts DOM elements hidden instead of removed.
	ElementsHidden = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pageblock_elements_hidden_total",
		Help: "DOM elements hidden by cosmetic enforcement.",
	})
)
