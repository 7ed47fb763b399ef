package source

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"pageblock/parser"
	"pageblock/rules"
)

//go:embed defaults.json
var bundledDefaults []byte

// DefaultBlockSource supplies the engine's baseline rule set. It prefers a
// remotely updated copy and falls back to the bundled payload when the
// remote is unreachable or serves something unparseable.
type DefaultBlockSource struct {
	name     string
	url      string
	loader   *Loader
	idRange  rules.IDRange
	interval time.Duration
	logger   *slog.Logger
}

// NewDefaultBlockSource creates the bundled-defaults source. url may be
// empty, in which case only the bundled payload is used.
func NewDefaultBlockSource(url string, loader *Loader, idRange rules.IDRange, interval time.Duration, logger *slog.Logger) *DefaultBlockSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultBlockSource{
		name:     "default",
		url:      url,
		loader:   loader,
		idRange:  idRange,
		interval: interval,
		logger:   logger,
	}
}

// FetchRules tries the remote payload first and falls back to the bundled
// one on any failure. An error is returned only when both fail, naming
// both failure points.
func (s *DefaultBlockSource) FetchRules(ctx context.Context) (Payload, error) {
	remoteErr := fmt.Errorf("no remote URL configured")
	if s.url != "" {
		data, err := s.loader.Fetch(ctx, s.url, s.interval)
		if err == nil {
			// The JSON parser never fails; nil means the payload was not
			// a rule array. A decoded empty array is an intentionally
			// emptied remote list and is honored as-is.
			if rs := parser.JSONRules([]byte(data)); rs != nil {
				return Payload{Rules: rs}, nil
			}
			remoteErr = fmt.Errorf("remote payload is not a rule array")
		} else {
			remoteErr = err
		}
		s.logger.Warn("default source falling back to bundled rules", "error", remoteErr)
	}

	rs := parser.JSONRules(bundledDefaults)
	if len(rs) == 0 {
		return Payload{}, fmt.Errorf("source %s: remote failed (%v) and bundled payload invalid", s.name, remoteErr)
	}
	return Payload{Rules: rs}, nil
}

func (s *DefaultBlockSource) RuleIDRange() rules.IDRange { return s.idRange }
func (s *DefaultBlockSource) UpdateInterval() time.Duration { return s.interval }
func (s *DefaultBlockSource) Name() string { return s.name }
func (s *DefaultBlockSource) UpdateType() UpdateType { return UpdateStatic }
