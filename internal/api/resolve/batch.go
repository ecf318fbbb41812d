package resolve

import (
	"context"
	"time"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const defaultBatchDelay = 50 * time.Millisecond

// Queue runs tasks one at a time with a fixed pause between them. Batch
// geocoding and photo prefetch go through it so the provider is never hit
// with a burst; the delay is politeness, not correctness, and is
// configurable so tests can run at full speed.
type Queue struct {
	delay time.Duration
}

func NewQueue(delay time.Duration) *Queue {
	if delay < 0 {
		delay = defaultBatchDelay
	}
	return &Queue{delay: delay}
}

// Run invokes fn for each index in order, pausing between calls. A
// cancelled context stops the batch before the next task; the task already
// in flight finishes on its own and its result is simply ignored by the
// caller. Individual task failures do not stop the batch.
func (q *Queue) Run(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(ctx, i)
		if i == n-1 || q.delay == 0 {
			continue
		}
		timer := time.NewTimer(q.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// BatchEntry is one place to resolve in a batch: its map link (may be
// empty), its display name and an optional region hint for the retry.
type BatchEntry struct {
	MapURL     string
	PlaceName  string
	RegionHint string
}

// ResolveBatch geocodes every entry sequentially through the queue. Keys of
// the returned map are input indexes; unresolvable entries are absent, not
// errors. On cancellation the partial map is returned with the context
// error.
func ResolveBatch(ctx context.Context, q *Queue, r Resolver, entries []BatchEntry) (map[int]types.Coordinate, error) {
	out := make(map[int]types.Coordinate, len(entries))
	err := q.Run(ctx, len(entries), func(ctx context.Context, i int) {
		e := entries[i]
		res, ok := ExtractFromMapURL(e.MapURL)
		if !ok && e.PlaceName == "" {
			return
		}
		if c, ok := r.ResolveWithContext(ctx, res, e.PlaceName, e.RegionHint); ok {
			out[i] = c
		}
	})
	return out, err
}
