package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultTickInterval is the minimum gate between coordinator ticks.
const DefaultTickInterval = 50 * time.Millisecond

// ResourceView is one resource's level in a snapshot.
type ResourceView struct {
	Name     string
	Amount   int
	Capacity int
}

// UnitView is one unit's operating mode in a snapshot.
type UnitView struct {
	Name   string
	Status UnitStatus
}

// Snapshot is a point-in-time consistent view of the simulation for
// presentation. Resource reads take the same locks as the mutators.
type Snapshot struct {
	Resources []ResourceView
	Units     []UnitView
}

// Observer receives coordinator ticks and drained events. Implementations
// run on the manager goroutine and must be fast or do their own
// throttling; the display and the journal both hang off this interface.
type Observer interface {
	ObserveTick(Snapshot)
	ObserveEvent(Event)
}

// Manager owns the resource pool, the unit set, the shared event queue
// and the run-state latch. Its tick loop drains the queue and turns each
// event into a global policy decision: speed units up, slow them down, or
// terminate the whole run.
type Manager struct {
	queue *EventQueue
	run   RunState

	resources []*Resource
	byName    map[string]*Resource
	units     []*Unit

	// critical is the life-critical supply: a unit reporting it empty
	// terminates the run. target is the voyage goal: reaching its
	// capacity also terminates the run.
	critical *Resource
	target   *Resource

	tick      time.Duration
	ids       IDGenerator
	observers []Observer

	started bool
}

// ManagerOption configures a Manager at construction.
type ManagerOption func(*Manager)

// WithTickInterval overrides the coordinator's minimum tick interval.
func WithTickInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.tick = d
	}
}

// WithObserver registers an observer for ticks and drained events.
// May be given multiple times.
func WithObserver(o Observer) ManagerOption {
	return func(m *Manager) {
		m.observers = append(m.observers, o)
	}
}

// WithIDGenerator overrides the event ID generator (for testing).
func WithIDGenerator(g IDGenerator) ManagerOption {
	return func(m *Manager) {
		m.ids = g
	}
}

// NewManager creates an empty simulation. Resources and units are added
// through AddResource and AddUnit before Run starts the workers.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		queue:  NewEventQueue(),
		byName: make(map[string]*Resource),
		tick:   DefaultTickInterval,
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddResource registers a new resource before the run starts.
// The name must be unique and the initial amount within [0, capacity].
func (m *Manager) AddResource(name string, amount, capacity int) (*Resource, error) {
	if m.started {
		return nil, fmt.Errorf("add resource %q: simulation already started", name)
	}
	if capacity < 0 || amount < 0 || amount > capacity {
		return nil, fmt.Errorf("add resource %q: amount %d outside [0, %d]", name, amount, capacity)
	}
	if _, exists := m.byName[name]; exists {
		return nil, fmt.Errorf("add resource %q: duplicate name", name)
	}

	r := NewResource(name, amount, capacity)
	m.resources = append(m.resources, r)
	m.byName[name] = r
	return r, nil
}

// Resource returns a registered resource by name.
func (m *Manager) Resource(name string) (*Resource, bool) {
	r, ok := m.byName[name]
	return r, ok
}

// AddUnit registers a production unit bound to the shared event queue.
// The bindings must reference resources owned by this manager (or be
// zero-valued for pure sources/sinks).
func (m *Manager) AddUnit(name string, consumed, produced ResourceAmount, processingTime time.Duration, opts ...UnitOption) (*Unit, error) {
	if m.started {
		return nil, fmt.Errorf("add unit %q: simulation already started", name)
	}
	for _, u := range m.units {
		if u.Name() == name {
			return nil, fmt.Errorf("add unit %q: duplicate name", name)
		}
	}
	if err := m.checkBinding(name, consumed.Resource); err != nil {
		return nil, err
	}
	if err := m.checkBinding(name, produced.Resource); err != nil {
		return nil, err
	}

	u := NewUnit(name, consumed, produced, processingTime, m.queue, m.ids, opts...)
	m.units = append(m.units, u)
	return u, nil
}

func (m *Manager) checkBinding(unit string, r *Resource) error {
	if r == nil {
		return nil
	}
	if m.byName[r.Name()] != r {
		return fmt.Errorf("add unit %q: resource %q not owned by this manager", unit, r.Name())
	}
	return nil
}

// SetCriticalResource designates the life-critical supply by name.
func (m *Manager) SetCriticalResource(name string) error {
	r, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("critical resource %q not registered", name)
	}
	m.critical = r
	return nil
}

// SetTargetResource designates the voyage goal by name.
func (m *Manager) SetTargetResource(name string) error {
	r, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("target resource %q not registered", name)
	}
	m.target = r
	return nil
}

// Running reports whether the run-state latch is still up.
func (m *Manager) Running() bool {
	return m.run.Running()
}

// Stop drops the run-state latch. Units observe it within one cycle.
func (m *Manager) Stop() {
	m.run.Halt()
}

// QueueLen returns the number of pending events, for monitoring and tests.
func (m *Manager) QueueLen() int {
	return m.queue.Len()
}

// Snapshot captures a consistent view of every resource level and unit
// status, taking the same locks as the mutators.
func (m *Manager) Snapshot() Snapshot {
	snap := Snapshot{
		Resources: make([]ResourceView, 0, len(m.resources)),
		Units:     make([]UnitView, 0, len(m.units)),
	}
	for _, r := range m.resources {
		amount, capacity := r.Level()
		snap.Resources = append(snap.Resources, ResourceView{Name: r.Name(), Amount: amount, Capacity: capacity})
	}
	for _, u := range m.units {
		snap.Units = append(snap.Units, UnitView{Name: u.Name(), Status: u.Status()})
	}
	return snap
}

// Run starts one goroutine per unit plus the coordinator tick loop, and
// blocks until a terminal event halts the run or ctx is cancelled. All
// unit goroutines are joined before Run returns.
//
// Returns nil when the run ends by policy (life-critical supply depleted
// or the target resource full); returns ctx.Err() on cancellation.
func (m *Manager) Run(ctx context.Context) error {
	if m.started {
		return fmt.Errorf("simulation already started")
	}
	m.started = true

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, u := range m.units {
		u := u
		wg.Add(1)
		go func() {
			defer wg.Done()
			u.Run(ctx, &m.run)
		}()
	}
	slog.Info("simulation started", "units", len(m.units), "resources", len(m.resources))

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	var err error
loop:
	for {
		m.step()
		if !m.run.Running() {
			break
		}
		select {
		case <-ctx.Done():
			m.run.Halt()
			err = ctx.Err()
			break loop
		case <-ticker.C:
		}
	}

	// Wake units sleeping through processing delays or backoffs so the
	// latch is observed immediately rather than after the full sleep.
	cancel()
	wg.Wait()
	slog.Info("simulation stopped")
	return err
}

// step is one coordinator tick: publish a snapshot to the observers, then
// drain the queue fully, applying the policy for each event in pop order.
func (m *Manager) step() {
	snap := m.Snapshot()
	for _, o := range m.observers {
		o.ObserveTick(snap)
	}

	for {
		ev, ok := m.queue.Pop()
		if !ok {
			return
		}
		m.handleEvent(ev)
	}
}

// handleEvent classifies one drained event and applies the resulting
// decision. The four flags are computed independently and the decision is
// applied per unit as each event is processed, so a later event in the
// same drain can overwrite an earlier decision. That last-applied-wins
// behavior is deliberate; see DESIGN.md before "fixing" it.
func (m *Manager) handleEvent(ev Event) {
	for _, o := range m.observers {
		o.ObserveEvent(ev)
	}
	slog.Info("event drained",
		"unit", ev.Unit.Name(),
		"resource", ev.Resource.Name(),
		"status", ev.Status.String(),
		"priority", ev.Priority.String(),
		"amount", ev.Amount,
	)

	noSupply := ev.Status == StatusEmpty && ev.Resource == m.critical
	destinationReached := ev.Status == StatusCapacity && ev.Resource == m.target
	needMore := ev.Status == StatusLow || ev.Status == StatusEmpty || ev.Status == StatusInsufficient
	needLess := ev.Status == StatusCapacity

	var decision UnitStatus
	switch {
	case noSupply || destinationReached:
		if noSupply {
			slog.Warn("life-critical resource depleted, terminating all units", "resource", ev.Resource.Name())
		} else {
			slog.Info("destination reached, terminating all units", "resource", ev.Resource.Name())
		}
		decision = UnitTerminate
		m.run.Halt()
	case needMore:
		decision = UnitFast
	case needLess:
		decision = UnitSlow
	default:
		return
	}

	// TERMINATE applies to every unit unconditionally; FAST and SLOW only
	// to units producing the resource the event concerns.
	for _, u := range m.units {
		if decision == UnitTerminate || u.Produced().Resource == ev.Resource {
			u.SetStatus(decision)
		}
	}
}
