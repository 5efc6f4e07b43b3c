package mirror

import (
	"fmt"
	"sync/atomic"
)

// Stats counts replication outcomes for the shutdown summary.
type Stats struct {
	batches     atomic.Int64
	drainErrors atomic.Int64
	skipped     atomic.Int64

	applied [3]atomic.Int64 // indexed by kindIndex
	failed  [3]atomic.Int64

	navigations       atomic.Int64
	failedNavigations atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Batches           int64
	DrainErrors       int64
	Skipped           int64
	Applied           map[Kind]int64
	Failed            map[Kind]int64
	Navigations       int64
	FailedNavigations int64
}

var statKinds = [3]Kind{KindClick, KindInput, KindScroll}

func kindIndex(kind Kind) int {
	for i, k := range statKinds {
		if k == kind {
			return i
		}
	}
	return -1
}

func (s *Stats) recordApplied(kind Kind) {
	if i := kindIndex(kind); i >= 0 {
		s.applied[i].Add(1)
	}
}

func (s *Stats) recordFailed(kind Kind) {
	if i := kindIndex(kind); i >= 0 {
		s.failed[i].Add(1)
	}
}

// Snapshot returns the current counts.
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Batches:           s.batches.Load(),
		DrainErrors:       s.drainErrors.Load(),
		Skipped:           s.skipped.Load(),
		Applied:           make(map[Kind]int64, len(statKinds)),
		Failed:            make(map[Kind]int64, len(statKinds)),
		Navigations:       s.navigations.Load(),
		FailedNavigations: s.failedNavigations.Load(),
	}
	for i, kind := range statKinds {
		snap.Applied[kind] = s.applied[i].Load()
		snap.Failed[kind] = s.failed[i].Load()
	}
	return snap
}

// String summarizes the snapshot on one line.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"%d batches; clicks %d ok/%d failed; inputs %d ok/%d failed; scrolls %d ok/%d failed; navigations %d ok/%d failed",
		s.Batches,
		s.Applied[KindClick], s.Failed[KindClick],
		s.Applied[KindInput], s.Failed[KindInput],
		s.Applied[KindScroll], s.Failed[KindScroll],
		s.Navigations, s.FailedNavigations,
	)
}
