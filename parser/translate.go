package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"pageblock/rules"
)

// Sentinel errors for filter lines the network path cannot use.
var (
	ErrExceptionFilter = errors.New("exception filters are not translatable")
	ErrCosmeticFilter  = errors.New("cosmetic filters are not translatable")
	ErrEmptyFilter     = errors.New("empty filter")
)

// resourceTypeOptions maps filter options to request resource types. Other
// options ($third-party, $match-case, ...) are tolerated and ignored.
var resourceTypeOptions = map[string]string{
	"script":         "script",
	"image":          "image",
	"stylesheet":     "stylesheet",
	"xmlhttprequest": "xmlhttprequest",
	"subdocument":    "sub_frame",
	"font":           "font",
	"media":          "media",
	"websocket":      "websocket",
	"other":          "other",
}

// Translate converts one EasyList-style network filter line into a
// directive condition. It handles the network subset of the grammar:
//
//	||domain^        anchor match on domain and subdomains
//	/pattern/        regular expression
//	substring        literal substring, * wildcards allowed
//
// Exception (@@) and cosmetic (##, #@#, #?#) lines are rejected; the
// caller counts them as conversion failures and moves on.
func Translate(line string) (rules.Condition, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return rules.Condition{}, ErrEmptyFilter
	}
	if strings.HasPrefix(line, "@@") {
		return rules.Condition{}, ErrExceptionFilter
	}
	if strings.Contains(line, "##") || strings.Contains(line, "#@#") || strings.Contains(line, "#?#") {
		return rules.Condition{}, ErrCosmeticFilter
	}

	cond := rules.Condition{ResourceTypes: rules.DefaultResourceTypes}

	// Options are at the end, after $. A $ inside /.../ delimiters is
	// part of the pattern (an anchor, usually), not an options separator.
	if idx := strings.LastIndex(line, "$"); idx != -1 && !regexDelimited(line) {
		if types := parseResourceTypes(line[idx+1:]); len(types) > 0 {
			cond.ResourceTypes = types
		}
		line = line[:idx]
		if line == "" {
			return rules.Condition{}, ErrEmptyFilter
		}
	}

	// Regex rules: /pattern/
	if regexDelimited(line) {
		pattern := line[1 : len(line)-1]
		if _, err := regexp.Compile(pattern); err != nil {
			return rules.Condition{}, fmt.Errorf("invalid regex filter: %w", err)
		}
		cond.RegexFilter = pattern
		return cond, nil
	}

	// Anchor rules: ||domain^ (trailing ^ optional in the wild).
	if strings.HasPrefix(line, "||") {
		domain := strings.TrimSuffix(line[2:], "^")
		if domain == "" {
			return rules.Condition{}, ErrEmptyFilter
		}
		cond.URLFilter = "||" + domain + "^"
		return cond, nil
	}

	cond.URLFilter = line
	return cond, nil
}

func regexDelimited(line string) bool {
	return len(line) > 2 && strings.HasPrefix(line, "/") && strings.HasSuffix(line, "/")
}

func parseResourceTypes(raw string) []string {
	var types []string
	for _, opt := range strings.Split(raw, ",") {
		opt = strings.TrimSpace(opt)
		if t, ok := resourceTypeOptions[opt]; ok {
			types = append(types, t)
		}
	}
	return types
}
