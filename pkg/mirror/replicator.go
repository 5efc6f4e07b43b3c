package mirror

import "fmt"

// Follower is a window that replays captured interactions.
type Follower interface {
	WindowName() string
	Click(selector string) error
	Fill(selector, value string) error
	ScrollTo(x, y int) error
	Navigate(url string) error
}

// Logger is the logging surface the mirror loops write to.
type Logger interface {
	Debugf(format string, v ...interface{})
	Verbosef(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// Replicator applies drained actions to every follower.
type Replicator struct {
	followers []Follower
	enabled   map[Kind]bool // nil replicates every kind
	stats     *Stats
	logger    Logger
}

// NewReplicator creates a replicator for a fixed follower list.
// When kinds is non-nil only those kinds are replicated.
func NewReplicator(followers []Follower, kinds []Kind, stats *Stats, logger Logger) *Replicator {
	r := &Replicator{
		followers: followers,
		stats:     stats,
		logger:    logger,
	}
	if kinds != nil {
		r.enabled = make(map[Kind]bool, len(kinds))
		for _, kind := range kinds {
			r.enabled[kind] = true
		}
	}
	return r
}

// Replicate applies each action, in order, to each follower, in list order.
// A failure is logged and affects only that (action, follower) pair; nothing
// is retried.
func (r *Replicator) Replicate(actions []Action) {
	for _, action := range actions {
		if r.enabled != nil && !r.enabled[action.Kind] {
			r.stats.skipped.Add(1)
			r.logger.Debugf("Skipping %s (replication disabled for %s)", action, action.Kind)
			continue
		}

		delivered := 0
		for _, follower := range r.followers {
			if err := apply(follower, action); err != nil {
				r.stats.recordFailed(action.Kind)
				r.logger.Errorf("Failed to replicate %s on %s (%s): %v",
					action.Kind, action.target(), follower.WindowName(), err)
				continue
			}
			r.stats.recordApplied(action.Kind)
			delivered++
		}

		r.logger.Verbosef("Replicated %s to %d/%d followers", action, delivered, len(r.followers))
	}
}

// apply dispatches one action to one follower by kind.
func apply(follower Follower, action Action) error {
	switch action.Kind {
	case KindClick:
		return follower.Click(action.Selector)
	case KindInput:
		return follower.Fill(action.Selector, action.Text)
	case KindScroll:
		return follower.ScrollTo(action.Scroll.X, action.Scroll.Y)
	default:
		return fmt.Errorf("unsupported action type %q", action.Kind)
	}
}
