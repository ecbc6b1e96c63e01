package engine

import "sync/atomic"

// RunState is the one-way latch controlling whether units keep operating.
//
// It starts running and transitions to halted exactly once, written only
// by the manager. Every unit reads it at the top of each cycle; atomic
// load guarantees cross-goroutine visibility without tearing.
type RunState struct {
	halted atomic.Bool
}

// Running reports whether the run is still live.
func (s *RunState) Running() bool {
	return !s.halted.Load()
}

// Halt drops the latch. Idempotent; there is no way back for the run.
func (s *RunState) Halt() {
	s.halted.Store(true)
}
