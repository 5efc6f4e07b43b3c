package mirror

import (
	"context"
	"errors"
	"time"
)

// ErrControllerClosed is returned when the controlling window was closed,
// which ends the run.
var ErrControllerClosed = errors.New("controlling window closed")

// DrainLoop polls the controller's action queue and replicates each batch.
// Batches are handled one at a time, so batch N is fully replicated before
// batch N+1 is drained.
type DrainLoop struct {
	recorder   *Recorder
	controller Controller
	replicator *Replicator
	interval   time.Duration
	stats      *Stats
	logger     Logger
}

// Run drains every interval until ctx is cancelled or the controller closes.
func (d *DrainLoop) Run(ctx context.Context) error {
	return poll(ctx, d.interval, d.tick)
}

// tick drains once. Only a closed controller stops the loop.
func (d *DrainLoop) tick() error {
	actions, err := d.recorder.Drain()

	var rejected *RejectedRecordsError
	switch {
	case err == nil:
	case errors.As(err, &rejected):
		for _, recErr := range rejected.Errs {
			d.logger.Warnf("Dropping unreadable action: %v", recErr)
		}
	case errors.Is(err, errRecorderMissing):
		d.logger.Warnf("Recorder missing on %s, re-injecting", d.controller.URL())
		if injectErr := d.recorder.Inject(); injectErr != nil {
			d.logger.Errorf("Error during replication: %v", injectErr)
		}
		return nil
	default:
		if d.controller.IsClosed() {
			return ErrControllerClosed
		}
		d.stats.drainErrors.Add(1)
		d.logger.Errorf("Error during replication: %v", err)
		return nil
	}

	if len(actions) == 0 {
		return nil
	}

	d.stats.batches.Add(1)
	d.logger.Debugf("Drained %d action(s)", len(actions))
	d.replicator.Replicate(actions)
	return nil
}
