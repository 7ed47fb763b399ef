package rules

import (
	"encoding/json"
	"strings"
)

// Severity expresses how confident a rule source is that the matched
// content should be blocked.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Kind distinguishes the matching strategy required for a rule.
type Kind int

const (
	KindNetwork  Kind = iota // blocks network requests by URL pattern
	KindCosmetic             // hides/removes DOM elements by CSS selector
)

// Rule is the canonical record every source converges to. Network rules
// populate Trigger, cosmetic rules populate Selector; the two are mutually
// exclusive upstream.
type Rule struct {
	ID            string   `json:"id"`
	Trigger       string   `json:"trigger,omitempty"`  // URL pattern (literal, ||anchor^, or regex)
	Selector      string   `json:"selector,omitempty"` // CSS selector
	IsRegex       bool     `json:"isRegex,omitempty"`
	Category      string   `json:"category,omitempty"`
	Description   string   `json:"description,omitempty"`
	Severity      Severity `json:"severity,omitempty"`
	ResourceTypes []string `json:"resourceTypes,omitempty"`
	Domains       []string `json:"domains,omitempty"` // "*" means unscoped
	Enabled       bool     `json:"enabled"`
}

// UnmarshalJSON accepts both identifier forms sources emit: a string id
// is taken as-is, a numeric id is kept in its decimal text form.
func (r *Rule) UnmarshalJSON(data []byte) error {
	type plain Rule
	aux := struct {
		ID json.RawMessage `json:"id"`
		*plain
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.ID = decodeID(aux.ID)
	return nil
}

func decodeID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Kind infers the rule kind from which trigger field is populated.
func (r *Rule) Kind() Kind {
	if strings.TrimSpace(r.Selector) != "" {
		return KindCosmetic
	}
	return KindNetwork
}

// HasSelector reports whether the rule carries a usable CSS selector.
// Empty and whitespace-only selectors are never compiled or indexed.
func (r *Rule) HasSelector() bool {
	return strings.TrimSpace(r.Selector) != ""
}

// Priority maps a severity to the numeric directive priority. The mapping
// is total: unknown values map to the lowest priority.
func (s Severity) Priority() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium, SeverityLow:
		return 1
	default:
		return 1
	}
}
