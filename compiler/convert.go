package compiler

import (
	"log/slog"

	"pageblock/parser"
	"pageblock/rules"
)

// maxFailureLogs caps per-item conversion warnings per batch so a broken
// list cannot flood the log. The aggregate stats line is always emitted.
const maxFailureLogs = 10

// Item is one unit of convertible rule material: either a raw filter line
// or a structured rule record. Exactly one field is set.
type Item struct {
	Filter string
	Rule   *rules.Rule
}

// ConvertStats summarizes one conversion batch.
type ConvertStats struct {
	Attempted int
	Succeeded int
	Failed    int
}

// Converter turns normalized rule material into network directives,
// assigning ids from the owning source's reserved range. The id cursor is
// local to one Convert call.
type Converter struct {
	logger *slog.Logger
}

// NewConverter creates a converter.
func NewConverter(logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{logger: logger}
}

// Convert processes items in order, assigning strictly increasing ids
// starting at idRange.Start. Untranslatable items are skipped, not fatal.
// Conversion stops silently once the range is exhausted; directives
// already produced are returned.
func (c *Converter) Convert(items []Item, idRange rules.IDRange) ([]rules.Directive, ConvertStats) {
	var stats ConvertStats
	directives := make([]rules.Directive, 0, min(len(items), idRange.Width()))

	cursor := idRange.Start
	for _, item := range items {
		if cursor > idRange.End {
			break // id range exhausted, truncate the batch
		}
		stats.Attempted++

		var (
			cond     rules.Condition
			priority int
			err      error
		)
		if item.Rule != nil {
			cond, priority = convertRule(item.Rule)
		} else {
			cond, err = parser.Translate(item.Filter)
			priority = 1
		}
		if err != nil {
			stats.Failed++
			if stats.Failed <= maxFailureLogs {
				c.logger.Warn("skipping unconvertible rule", "filter", item.Filter, "error", err)
			}
			continue
		}

		directives = append(directives, rules.Directive{
			ID:        cursor,
			Priority:  priority,
			Action:    rules.Action{Type: "block"},
			Condition: cond,
		})
		cursor++
		stats.Succeeded++
	}

	c.logger.Info("conversion batch finished",
		"attempted", stats.Attempted,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed)

	return directives, stats
}

// convertRule maps a structured rule record to a directive condition and
// priority. A missing trigger still yields a usable directive.
func convertRule(r *rules.Rule) (rules.Condition, int) {
	cond := rules.Condition{ResourceTypes: r.ResourceTypes}
	if len(cond.ResourceTypes) == 0 {
		cond.ResourceTypes = rules.DefaultResourceTypes
	}

	// RegexFilter and URLFilter are mutually exclusive in the output.
	if r.IsRegex {
		cond.RegexFilter = r.Trigger
	} else {
		cond.URLFilter = "*://*" + r.Trigger + "/*"
	}

	return cond, r.Severity.Priority()
}
