package mirror

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Default loop intervals
const (
	DefaultActionInterval = 10 * time.Millisecond
	DefaultURLInterval    = 100 * time.Millisecond
)

// Controller is the window whose interactions are captured.
type Controller interface {
	ScriptTarget
	URL() string
	IsClosed() bool
}

// Options configures a Mirror.
type Options struct {
	// ActionInterval is the drain loop cadence
	ActionInterval time.Duration

	// URLInterval is the URL watcher cadence
	URLInterval time.Duration

	// Actions limits which kinds are replicated. Nil replicates all kinds
	Actions []Kind

	// IgnoreURLs are glob patterns of controller URLs never propagated to followers
	IgnoreURLs []string
}

// Mirror replicates a controller window's interactions onto followers.
type Mirror struct {
	recorder *Recorder
	drain    *DrainLoop
	watcher  *URLWatcher
	stats    *Stats
	logger   Logger
}

// New wires the recorder, drain loop, replicator and URL watcher for a
// fixed follower list.
func New(controller Controller, followers []Follower, opts Options, logger Logger) (*Mirror, error) {
	if len(followers) == 0 {
		return nil, fmt.Errorf("at least one follower is required")
	}
	if opts.ActionInterval <= 0 {
		opts.ActionInterval = DefaultActionInterval
	}
	if opts.URLInterval <= 0 {
		opts.URLInterval = DefaultURLInterval
	}

	ignore, err := compileIgnore(opts.IgnoreURLs)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	recorder := NewRecorder(controller)

	return &Mirror{
		recorder: recorder,
		drain: &DrainLoop{
			recorder:   recorder,
			controller: controller,
			replicator: NewReplicator(followers, opts.Actions, stats, logger),
			interval:   opts.ActionInterval,
			stats:      stats,
			logger:     logger,
		},
		watcher: &URLWatcher{
			controller: controller,
			followers:  followers,
			interval:   opts.URLInterval,
			ignore:     ignore,
			stats:      stats,
			logger:     logger,
		},
		stats:  stats,
		logger: logger,
	}, nil
}

// Run installs the recorder and runs the drain loop and URL watcher until
// ctx is cancelled (nil) or the controller closes (ErrControllerClosed).
// The two loops share no ordering; when one stops, the other is cancelled.
func (m *Mirror) Run(ctx context.Context) error {
	if err := m.recorder.Install(); err != nil {
		return fmt.Errorf("failed to install recorder: %w", err)
	}
	m.logger.Debugf("Recorder installed")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.drain.Run(gctx) })
	g.Go(func() error { return m.watcher.Run(gctx) })
	return g.Wait()
}

// Stats returns the replication counts so far.
func (m *Mirror) Stats() StatsSnapshot {
	return m.stats.Snapshot()
}
