package mirror

import (
	"context"
	"time"
)

// poll runs tick, then sleeps interval, until ctx is cancelled or tick
// returns an error. Cancellation is only observed while sleeping, so a tick
// in progress always completes. It returns nil on cancellation.
func poll(ctx context.Context, interval time.Duration, tick func() error) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := tick(); err != nil {
			return err
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}
