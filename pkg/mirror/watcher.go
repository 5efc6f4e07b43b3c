package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/gobwas/glob"
)

// URLWatcher propagates the controller's navigations to every follower.
type URLWatcher struct {
	controller Controller
	followers  []Follower
	interval   time.Duration
	ignore     []glob.Glob
	lastURL    string
	stats      *Stats
	logger     Logger
}

// compileIgnore compiles URL glob patterns.
func compileIgnore(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore URL pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Run records the controller's current URL, then compares every interval
// until ctx is cancelled.
func (w *URLWatcher) Run(ctx context.Context) error {
	w.lastURL = w.controller.URL()
	return poll(ctx, w.interval, w.tick)
}

// tick navigates every follower, in list order, when the controller URL
// changed. A failed follower navigation is logged and the others proceed.
func (w *URLWatcher) tick() error {
	current := w.controller.URL()
	if current == w.lastURL {
		return nil
	}

	if w.ignored(current) {
		w.logger.Debugf("Not propagating ignored URL %s", current)
		w.lastURL = current
		return nil
	}

	w.logger.Infof("Controller navigated to %s", current)
	for _, follower := range w.followers {
		if err := follower.Navigate(current); err != nil {
			w.stats.failedNavigations.Add(1)
			w.logger.Errorf("Failed to navigate %s to %s: %v", follower.WindowName(), current, err)
			continue
		}
		w.stats.navigations.Add(1)
	}

	w.lastURL = current
	return nil
}

func (w *URLWatcher) ignored(url string) bool {
	for _, g := range w.ignore {
		if g.Match(url) {
			return true
		}
	}
	return false
}
