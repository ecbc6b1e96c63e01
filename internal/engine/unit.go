package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// UnitStatus is the operating mode of a production unit. Written only by
// the manager, read atomically by the unit's own goroutine each cycle.
//
// UnitTerminate is absorbing: once set, the unit's loop exits and no
// transition leaves it. UnitDisabled is reserved; no policy currently
// sets it.
type UnitStatus int32

const (
	UnitStandard UnitStatus = iota
	UnitSlow
	UnitFast
	UnitDisabled
	UnitTerminate
)

// String returns the status name for logs and the dashboard.
func (s UnitStatus) String() string {
	switch s {
	case UnitStandard:
		return "STANDARD"
	case UnitSlow:
		return "SLOW"
	case UnitFast:
		return "FAST"
	case UnitDisabled:
		return "DISABLED"
	case UnitTerminate:
		return "TERMINATE"
	default:
		return "UNKNOWN"
	}
}

// DefaultBackoff is how long a unit pauses after a failed convert or
// store before retrying. The pause throttles event storms during
// shortages; failures are recoverable, never fatal to the unit.
const DefaultBackoff = 100 * time.Millisecond

// Unit is a worker that repeatedly converts one resource into another at
// a speed the manager adjusts through the unit's status.
//
// amountStored is produced quantity not yet flushed to the target
// resource. It is touched only by the unit's own goroutine, so it needs
// no synchronization.
type Unit struct {
	name           string
	consumed       ResourceAmount
	produced       ResourceAmount
	processingTime time.Duration
	backoff        time.Duration

	status       atomic.Int32
	amountStored int

	queue *EventQueue
	ids   IDGenerator
}

// UnitOption configures a Unit at construction.
type UnitOption func(*Unit)

// WithBackoff overrides the retry pause after failed converts and stores.
// Tests shrink it to keep cycles fast.
func WithBackoff(d time.Duration) UnitOption {
	return func(u *Unit) {
		u.backoff = d
	}
}

// NewUnit creates a unit with fixed consumed/produced bindings, publishing
// its events to queue. The unit starts in UnitStandard.
func NewUnit(name string, consumed, produced ResourceAmount, processingTime time.Duration, queue *EventQueue, ids IDGenerator, opts ...UnitOption) *Unit {
	u := &Unit{
		name:           name,
		consumed:       consumed,
		produced:       produced,
		processingTime: processingTime,
		backoff:        DefaultBackoff,
		queue:          queue,
		ids:            ids,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Name returns the unit's unique name.
func (u *Unit) Name() string { return u.name }

// Consumed returns the unit's input binding.
func (u *Unit) Consumed() ResourceAmount { return u.consumed }

// Produced returns the unit's output binding.
func (u *Unit) Produced() ResourceAmount { return u.produced }

// Status returns the current operating mode.
func (u *Unit) Status() UnitStatus {
	return UnitStatus(u.status.Load())
}

// SetStatus changes the operating mode. Called only by the manager; the
// unit observes the change at its next cycle.
func (u *Unit) SetStatus(s UnitStatus) {
	u.status.Store(int32(s))
}

// Run executes production cycles until the run-state latch drops, the
// unit is terminated, or ctx is cancelled. The exit is cooperative:
// at most one in-flight cycle completes after the latch drops.
func (u *Unit) Run(ctx context.Context, run *RunState) {
	slog.Debug("unit starting", "unit", u.name)
	for run.Running() && u.Status() != UnitTerminate && ctx.Err() == nil {
		u.step(ctx)
	}
	slog.Debug("unit stopped", "unit", u.name, "status", u.Status())
}

// step is one production cycle: convert if nothing is pending from the
// previous cycle, then flush whatever is stored toward the produced
// resource. Both failure paths report an event and back off briefly.
func (u *Unit) step(ctx context.Context) {
	if u.amountStored == 0 {
		if status := u.convert(ctx); status != StatusOK {
			u.report(u.consumed.Resource, status, PriorityHigh, u.consumed.Amount)
			sleepCtx(ctx, u.backoff)
		}
	}

	if u.amountStored > 0 {
		if status := u.store(); status != StatusOK {
			u.report(u.produced.Resource, status, PriorityLow, u.produced.Amount)
			sleepCtx(ctx, u.backoff)
		}
	}
}

// convert consumes the input resource and, after the processing delay,
// holds the produced quantity in amountStored for the store phase.
//
// A unit with no consumed binding always converts. On failure nothing is
// consumed and nothing is produced.
func (u *Unit) convert(ctx context.Context) Status {
	status := StatusOK
	if u.consumed.Resource != nil {
		status = u.consumed.Resource.Consume(u.consumed.Amount)
	}
	if status != StatusOK {
		return status
	}

	sleepCtx(ctx, u.scaledProcessingTime())

	if u.produced.Resource != nil {
		u.amountStored = u.produced.Amount
	} else {
		// Pure sink: the conversion succeeds but nothing accumulates.
		u.amountStored = 0
	}
	return StatusOK
}

// store deposits amountStored into the produced resource without
// exceeding its capacity. Whatever does not fit stays in amountStored for
// the next cycle, preserved exactly; a leftover means StatusCapacity.
func (u *Unit) store() Status {
	if u.produced.Resource == nil || u.amountStored == 0 {
		u.amountStored = 0
		return StatusOK
	}

	deposited := u.produced.Resource.Deposit(u.amountStored)
	u.amountStored -= deposited

	if u.amountStored != 0 {
		return StatusCapacity
	}
	return StatusOK
}

// scaledProcessingTime applies the manager's throughput lever: double
// when slowed, half when sped up.
func (u *Unit) scaledProcessingTime() time.Duration {
	switch u.Status() {
	case UnitSlow:
		return u.processingTime * 2
	case UnitFast:
		return u.processingTime / 2
	default:
		return u.processingTime
	}
}

// report publishes an event for the given resource condition.
func (u *Unit) report(r *Resource, status Status, priority Priority, amount int) {
	u.queue.Push(Event{
		ID:       u.ids.Generate(),
		Unit:     u,
		Resource: r,
		Status:   status,
		Priority: priority,
		Amount:   amount,
	})
	slog.Debug("unit reported event",
		"unit", u.name,
		"resource", r.Name(),
		"status", status.String(),
		"priority", priority.String(),
		"amount", amount,
	)
}

// sleepCtx suspends for d but wakes early on ctx cancellation.
// Never busy-spins; d <= 0 returns immediately.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
