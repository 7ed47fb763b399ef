package source

import (
	"context"
	"fmt"
	"time"

	"pageblock/rules"
)

// EasyListSource fetches an EasyList-style filter-list from a remote URL.
type EasyListSource struct {
	name     string
	url      string
	loader   *Loader
	idRange  rules.IDRange
	interval time.Duration
}

// NewEasyListSource creates a filter-list source.
func NewEasyListSource(name, url string, loader *Loader, idRange rules.IDRange, interval time.Duration) *EasyListSource {
	return &EasyListSource{
		name:     name,
		url:      url,
		loader:   loader,
		idRange:  idRange,
		interval: interval,
	}
}

// FetchRules fetches the raw filter-list text. Fetch failures, including
// non-success HTTP status, are returned with the source name attached.
func (s *EasyListSource) FetchRules(ctx context.Context) (Payload, error) {
	text, err := s.loader.Fetch(ctx, s.url, s.interval)
	if err != nil {
		return Payload{}, fmt.Errorf("source %s: %w", s.name, err)
	}
	return Payload{Text: text}, nil
}

func (s *EasyListSource) RuleIDRange() rules.IDRange { return s.idRange }
func (s *EasyListSource) UpdateInterval() time.Duration { return s.interval }
func (s *EasyListSource) Name() string { return s.name }
func (s *EasyListSource) UpdateType() UpdateType { return UpdateDynamic }
