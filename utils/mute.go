package utils

import (
	"time"
)

// BatchMute limits how many warnings a batch emits per interval. Callers
// report every event and are told whether to stay quiet and how many
// events went unreported once the window resets.
type BatchMute struct {
	windowStart time.Time
	interval    time.Duration
	seen        int
	limit       int
}

// NewBatchMute returns a BatchMute allowing limit events per interval.
// A zero limit or interval disables muting.
func NewBatchMute(interval time.Duration, limit int) *BatchMute {
	return &BatchMute{
		windowStart: time.Now().UTC(),
		interval:    interval,
		limit:       limit,
	}
}

// Increment records one event and reports whether muting applies.
func (b *BatchMute) Increment() (muted bool, skipped int) {
	return b.increment(1, time.Now().UTC())
}

func (b *BatchMute) increment(val int, t time.Time) (muted bool, skipped int) {
	if b.limit == 0 || b.interval == 0 {
		return false, 0
	}

	if b.seen >= b.limit {
		skipped = b.seen - b.limit
	}

	if t.Sub(b.windowStart) > b.interval {
		b.seen = 0
		b.windowStart = t
	}
	b.seen += val

	return b.seen > b.limit, skipped
}
