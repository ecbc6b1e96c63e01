package harness

import (
	"sync"

	"github.com/roach88/voyager/internal/engine"
)

// Result is the outcome of running one case.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool

	// Halted is true when the run ended by policy (life-critical supply
	// depleted or target full) rather than by the case timeout.
	Halted bool

	// Snapshot is the final state after all unit goroutines joined.
	Snapshot engine.Snapshot

	// Events holds every event the coordinator drained, in drain order.
	Events []engine.Event

	// Errors lists failed assertions. Empty when Pass is true.
	Errors []string
}

// NewResult creates a passing result; assertion failures flip it.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError records an assertion failure and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// recorder captures drained events for later assertions. ObserveEvent
// runs on the manager goroutine; the mutex makes the slice safe to read
// once Run has returned.
type recorder struct {
	mu     sync.Mutex
	events []engine.Event
}

func (r *recorder) ObserveTick(engine.Snapshot) {}

func (r *recorder) ObserveEvent(ev engine.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) drained() []engine.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]engine.Event, len(r.events))
	copy(out, r.events)
	return out
}
