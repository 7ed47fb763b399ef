package parser

import (
	"encoding/json"
	"strings"

	"pageblock/rules"
)

// FilterText extracts candidate filter lines from a raw filter-list
// payload. Blank lines, comment lines and section headers are discarded;
// everything else is trimmed and passed through unmodified. Filter syntax
// is not validated here; translation decides what is usable.
// Malformed input never fails: the worst case is an empty result.
func FilterText(content string) []string {
	if content == "" {
		return nil
	}

	var filters []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Comments start with "!", section headers with "[" (e.g.
		// "[Adblock Plus 2.0]").
		if strings.HasPrefix(line, "!") || strings.HasPrefix(line, "[") {
			continue
		}
		filters = append(filters, line)
	}
	return filters
}

// JSONRules decodes a JSON payload into rule records. Only a top-level
// array is accepted; anything else (objects, scalars, null, malformed
// JSON) yields nil rather than an error. Array items are decoded one by
// one so a single undecodable item never discards the rest; a valid
// array always yields a non-nil slice, empty arrays included.
func JSONRules(data []byte) []rules.Rule {
	if len(data) == 0 {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return nil
	}

	rs := make([]rules.Rule, 0, len(items))
	for _, item := range items {
		var r rules.Rule
		if err := json.Unmarshal(item, &r); err != nil {
			continue
		}
		rs = append(rs, r)
	}
	return rs
}
