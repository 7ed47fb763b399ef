package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pageblock/rules"
)

// MaxCustomPatterns is the hard capacity ceiling for user-authored
// patterns. Exceeding input is truncated with a warning.
const MaxCustomPatterns = 5000

// PolicyStore is the key-value policy/sync store user patterns live in.
type PolicyStore interface {
	NetworkBlockPatterns(ctx context.Context) ([]string, error)
}

// CustomPatternSource turns user-authored URL patterns into rule records.
// Every pattern becomes a critical-severity rule with a sequential id.
type CustomPatternSource struct {
	store   PolicyStore
	idRange rules.IDRange
	logger  *slog.Logger
}

// NewCustomPatternSource creates the user-pattern source.
func NewCustomPatternSource(store PolicyStore, idRange rules.IDRange, logger *slog.Logger) *CustomPatternSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomPatternSource{
		store:   store,
		idRange: idRange,
		logger:  logger,
	}
}

// FetchRules reads the synced patterns and converts each to a rule record
// with id custom_<n>. At most MaxCustomPatterns are kept; the overflow is
// dropped and logged once.
func (s *CustomPatternSource) FetchRules(ctx context.Context) (Payload, error) {
	patterns, err := s.store.NetworkBlockPatterns(ctx)
	if err != nil {
		return Payload{}, fmt.Errorf("source %s: %w", s.Name(), err)
	}

	if len(patterns) > MaxCustomPatterns {
		s.logger.Warn("custom pattern capacity exceeded, truncating",
			"patterns", len(patterns), "limit", MaxCustomPatterns)
		patterns = patterns[:MaxCustomPatterns]
	}

	rs := make([]rules.Rule, 0, len(patterns))
	for i, p := range patterns {
		rs = append(rs, rules.Rule{
			ID:            fmt.Sprintf("custom_%d", i),
			Trigger:       p,
			Category:      "custom",
			Severity:      rules.SeverityCritical,
			ResourceTypes: rules.DefaultResourceTypes,
			Domains:       []string{"*"},
			Enabled:       true,
		})
	}
	return Payload{Rules: rs}, nil
}

func (s *CustomPatternSource) RuleIDRange() rules.IDRange { return s.idRange }
func (s *CustomPatternSource) UpdateInterval() time.Duration { return 0 } // manual refresh only
func (s *CustomPatternSource) Name() string { return "custom" }
func (s *CustomPatternSource) UpdateType() UpdateType { return UpdateDynamic }
