package updater

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageblock/compiler"
	"pageblock/rules"
	"pageblock/source"
)

type tickingSource struct {
	fetches  atomic.Int32
	interval time.Duration
}

func (s *tickingSource) FetchRules(context.Context) (source.Payload, error) {
	s.fetches.Add(1)
	return source.Payload{Text: "||ads.example.com^\n"}, nil
}
func (s *tickingSource) RuleIDRange() rules.IDRange { return rules.IDRange{Start: 1, End: 100} }
func (s *tickingSource) UpdateInterval() time.Duration { return s.interval }
func (s *tickingSource) Name() string { return "ticking" }
func (s *tickingSource) UpdateType() source.UpdateType { return source.UpdateDynamic }

func TestUpdaterRecompilesPeriodically(t *testing.T) {
	src := &tickingSource{interval: 20 * time.Millisecond}
	comp := compiler.New([]source.Source{src}, nil)

	var updates atomic.Int32
	u := NewUpdater(comp, func() { updates.Add(1) }, nil)
	u.Run()
	defer u.Stop()

	require.Eventually(t, func() bool {
		return updates.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.NotEmpty(t, comp.Directives())
}

func TestUpdaterNoLoopsForManualSources(t *testing.T) {
	src := &tickingSource{interval: 0}
	comp := compiler.New([]source.Source{src}, nil)

	u := NewUpdater(comp, nil, nil)
	u.Run()
	u.Stop() // returns immediately, nothing to wait for

	assert.Zero(t, src.fetches.Load())
}

func TestUpdaterStopIsIdempotent(t *testing.T) {
	src := &tickingSource{interval: time.Hour}
	comp := compiler.New([]source.Source{src}, nil)

	u := NewUpdater(comp, nil, nil)
	u.Run()
	u.Stop()
	u.Stop()
}
