package updater

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pageblock/compiler"
)

// Updater drives periodic recompiles, one refresh loop per dynamic
// source interval. Sources with interval 0 are manual-only and get no
// loop.
type Updater struct {
	compiler *compiler.Compiler
	logger   *slog.Logger
	onUpdate func() // optional hook after a successful recompile

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewUpdater creates a new Updater.
func NewUpdater(c *compiler.Compiler, onUpdate func(), logger *slog.Logger) *Updater {
	if logger == nil {
		logger = slog.Default()
	}
	return &Updater{
		compiler: c,
		logger:   logger,
		onUpdate: onUpdate,
		stop:     make(chan struct{}),
	}
}

// Run starts one refresh loop per distinct source interval. A recompile
// refreshes all sources; loops only decide when cycles happen.
func (u *Updater) Run() {
	intervals := make(map[time.Duration]struct{})
	for _, src := range u.compiler.Sources() {
		if iv := src.UpdateInterval(); iv > 0 {
			intervals[iv] = struct{}{}
		}
	}

	if len(intervals) == 0 {
		u.logger.Info("no periodic sources to update")
		return
	}

	for iv := range intervals {
		u.wg.Add(1)
		go u.loop(iv)
	}
	u.logger.Info("updater started", "loops", len(intervals))
}

// Stop terminates all refresh loops and waits for them.
func (u *Updater) Stop() {
	u.once.Do(func() {
		close(u.stop)
	})
	u.wg.Wait()
}

func (u *Updater) loop(interval time.Duration) {
	defer u.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			u.logger.Info("scheduled recompile", "interval", interval)
			if err := u.compiler.Compile(context.Background()); err != nil {
				u.logger.Error("scheduled recompile failed", "error", err)
				continue
			}
			if u.onUpdate != nil {
				u.onUpdate()
			}
		case <-u.stop:
			return
		}
	}
}
