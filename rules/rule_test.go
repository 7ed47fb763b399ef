package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityPriority(t *testing.T) {
	tests := []struct {
		severity Severity
		want     int
	}{
		{SeverityLow, 1},
		{SeverityMedium, 1},
		{SeverityHigh, 2},
		{SeverityCritical, 3},
		{Severity(""), 1},
		{Severity("bogus"), 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.severity.Priority(), "severity %q", tt.severity)
	}
}

func TestRuleKind(t *testing.T) {
	network := Rule{Trigger: "ads.example.com"}
	assert.Equal(t, KindNetwork, network.Kind())

	cosmetic := Rule{Selector: ".ad-banner"}
	assert.Equal(t, KindCosmetic, cosmetic.Kind())

	// Whitespace-only selectors are not cosmetic rules.
	blank := Rule{Trigger: "x.com", Selector: "   "}
	assert.Equal(t, KindNetwork, blank.Kind())
	assert.False(t, blank.HasSelector())
}

func TestIDRange(t *testing.T) {
	r := IDRange{Start: 1000, End: 2000}
	assert.Equal(t, 1001, r.Width())
	assert.True(t, r.Contains(1000))
	assert.True(t, r.Contains(2000))
	assert.False(t, r.Contains(2001))

	assert.True(t, r.Overlaps(IDRange{Start: 2000, End: 3000}))
	assert.False(t, r.Overlaps(IDRange{Start: 2001, End: 3000}))
	assert.Equal(t, 0, IDRange{Start: 5, End: 4}.Width())
}
