// Package engine implements the core of the voyage simulation: a pool of
// capacity-bounded resources, production units that convert one resource
// into another on independent goroutines, a priority event queue, and the
// manager loop that turns drained events into global speed and termination
// decisions.
//
// Concurrency model:
//   - Each unit runs on its own goroutine; the manager runs on one more.
//   - Resource amounts only change inside per-resource critical sections
//     (Consume, Deposit), so two units racing on the same resource can
//     never both pass a stale availability or capacity check.
//   - The event queue is multi-producer (units) / single-consumer (manager).
//   - The run-state latch and unit statuses are written only by the manager
//     and read atomically by the unit goroutines each cycle.
//
// Cancellation is cooperative: the manager drops the run-state latch (or
// the caller cancels the context) and every unit observes it within one
// cycle, bounded by its current processing delay or backoff.
package engine
