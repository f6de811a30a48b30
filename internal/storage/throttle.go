package storage

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Throttled limits transition writes to ratePerSec (burst ratePerSec).
// Writes over the limit are dropped and counted, so a rule that flaps on
// every tick cannot flood the journal. ratePerSec <= 0 returns st unchanged.
func Throttled(st Store, ratePerSec int) Store {
	if st == nil || ratePerSec <= 0 {
		return st
	}
	return &throttledStore{Store: st, lim: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)}
}

type throttledStore struct {
	Store
	lim     *rate.Limiter
	dropped atomic.Uint64
}

func (s *throttledStore) AppendTransition(ctx context.Context, t Transition) error {
	if !s.lim.Allow() {
		s.dropped.Add(1)
		return nil
	}
	return s.Store.AppendTransition(ctx, t)
}

// Dropped reports how many writes a Throttled store discarded.
// It returns 0 for stores that are not throttled.
func Dropped(st Store) uint64 {
	if ts, ok := st.(*throttledStore); ok {
		return ts.dropped.Load()
	}
	return 0
}
