package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageblock/rules"
)

func TestConvertAssignsIDsAndPriorities(t *testing.T) {
	conv := NewConverter(nil)

	items := []Item{
		{Rule: &rules.Rule{Trigger: "low.com", Severity: rules.SeverityLow, Enabled: true}},
		{Rule: &rules.Rule{Trigger: "critical.com", Severity: rules.SeverityCritical, Enabled: true}},
	}

	directives, stats := conv.Convert(items, rules.IDRange{Start: 1000, End: 2000})
	require.Len(t, directives, 2)

	assert.Equal(t, 1000, directives[0].ID)
	assert.Equal(t, 1001, directives[1].ID)
	assert.Equal(t, 1, directives[0].Priority)
	assert.Equal(t, 3, directives[1].Priority)
	assert.Equal(t, "block", directives[0].Action.Type)
	assert.Equal(t, "*://*low.com/*", directives[0].Condition.URLFilter)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Zero(t, stats.Failed)
}

func TestConvertTruncatesOnRangeExhaustion(t *testing.T) {
	conv := NewConverter(nil)

	items := []Item{
		{Filter: "||a.com^"},
		{Filter: "||b.com^"},
		{Filter: "||c.com^"},
	}

	directives, _ := conv.Convert(items, rules.IDRange{Start: 100, End: 101})
	require.Len(t, directives, 2, "exactly the available ids are used")
	assert.Equal(t, 100, directives[0].ID)
	assert.Equal(t, 101, directives[1].ID)
}

func TestConvertIDsWithinRangeAndIncreasing(t *testing.T) {
	conv := NewConverter(nil)
	idRange := rules.IDRange{Start: 50, End: 500}

	var items []Item
	for _, trig := range []string{"a.com", "b.com", "c.com", "d.com"} {
		items = append(items, Item{Rule: &rules.Rule{Trigger: trig, Enabled: true}})
	}
	directives, _ := conv.Convert(items, idRange)

	prev := idRange.Start - 1
	for _, d := range directives {
		assert.True(t, idRange.Contains(d.ID))
		assert.Greater(t, d.ID, prev)
		prev = d.ID
	}
}

func TestConvertRegexExclusivity(t *testing.T) {
	conv := NewConverter(nil)

	items := []Item{
		{Rule: &rules.Rule{Trigger: `^https?://ads\.`, IsRegex: true, Severity: rules.SeverityHigh, Enabled: true}},
	}
	directives, _ := conv.Convert(items, rules.IDRange{Start: 1, End: 10})
	require.Len(t, directives, 1)

	assert.Equal(t, `^https?://ads\.`, directives[0].Condition.RegexFilter)
	assert.Empty(t, directives[0].Condition.URLFilter,
		"a regex rule never carries both filters")
}

func TestConvertSkipsBadFiltersWithoutAborting(t *testing.T) {
	conv := NewConverter(nil)

	items := []Item{
		{Filter: "@@||allowed.com^"}, // untranslatable
		{Filter: "||good.com^"},
		{Filter: "example.com##.ad"}, // cosmetic, untranslatable
		{Filter: "||also-good.com^"},
	}

	directives, stats := conv.Convert(items, rules.IDRange{Start: 1, End: 100})
	require.Len(t, directives, 2)
	assert.Equal(t, 4, stats.Attempted)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 2, stats.Failed)
	// Skipped items do not burn ids.
	assert.Equal(t, 1, directives[0].ID)
	assert.Equal(t, 2, directives[1].ID)
}

func TestConvertMissingTriggerStillProduces(t *testing.T) {
	conv := NewConverter(nil)

	items := []Item{{Rule: &rules.Rule{Enabled: true}}}
	directives, stats := conv.Convert(items, rules.IDRange{Start: 1, End: 10})
	require.Len(t, directives, 1)
	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, "*://*/*", directives[0].Condition.URLFilter)
	assert.Equal(t, rules.DefaultResourceTypes, directives[0].Condition.ResourceTypes)
}

func TestConvertResourceTypeDefaulting(t *testing.T) {
	conv := NewConverter(nil)

	items := []Item{
		{Rule: &rules.Rule{Trigger: "a.com", ResourceTypes: []string{"image"}, Enabled: true}},
		{Rule: &rules.Rule{Trigger: "b.com", Enabled: true}},
	}
	directives, _ := conv.Convert(items, rules.IDRange{Start: 1, End: 10})
	require.Len(t, directives, 2)
	assert.Equal(t, []string{"image"}, directives[0].Condition.ResourceTypes)
	assert.Equal(t, rules.DefaultResourceTypes, directives[1].Condition.ResourceTypes)
}
