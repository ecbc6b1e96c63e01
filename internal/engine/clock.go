package engine

import "sync/atomic"

// Clock is a monotonic sequence source. The event queue stamps every push
// with a clock value to preserve FIFO order among equal-priority events,
// and the journal reuses the same numbers to keep drain order on disk.
//
// Thread-safety: atomic; safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// Next returns the next sequence number and increments the clock.
// Each call returns a unique, strictly increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
