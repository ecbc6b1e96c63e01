package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/voyager/internal/testutil"
)

func newTestManager(t *testing.T, opts ...ManagerOption) *Manager {
	t.Helper()
	opts = append([]ManagerOption{
		WithIDGenerator(testutil.NewSequenceGenerator("ev")),
		WithTickInterval(5 * time.Millisecond),
	}, opts...)
	return NewManager(opts...)
}

func TestManager_AddResourceValidation(t *testing.T) {
	m := newTestManager(t)

	_, err := m.AddResource("Fuel", 1000, 1000)
	require.NoError(t, err)

	_, err = m.AddResource("Fuel", 10, 10)
	assert.ErrorContains(t, err, "duplicate name")

	_, err = m.AddResource("Broken", 60, 50)
	assert.ErrorContains(t, err, "outside")

	_, err = m.AddResource("Negative", -1, 50)
	assert.Error(t, err)

	r, ok := m.Resource("Fuel")
	require.True(t, ok)
	amount, capacity := r.Level()
	assert.Equal(t, 1000, amount)
	assert.Equal(t, 1000, capacity)
}

func TestManager_AddUnitValidation(t *testing.T) {
	m := newTestManager(t)
	fuel, err := m.AddResource("Fuel", 1000, 1000)
	require.NoError(t, err)

	_, err = m.AddUnit("Propulsion", ResourceAmount{fuel, 5}, ResourceAmount{}, time.Millisecond)
	require.NoError(t, err)

	_, err = m.AddUnit("Propulsion", ResourceAmount{}, ResourceAmount{}, time.Millisecond)
	assert.ErrorContains(t, err, "duplicate name")

	foreign := NewResource("Fuel", 10, 10)
	_, err = m.AddUnit("Smuggler", ResourceAmount{foreign, 1}, ResourceAmount{}, time.Millisecond)
	assert.ErrorContains(t, err, "not owned by this manager")
}

func TestManager_SetDesignatedResources(t *testing.T) {
	m := newTestManager(t)
	_, err := m.AddResource("Oxygen", 20, 50)
	require.NoError(t, err)

	require.NoError(t, m.SetCriticalResource("Oxygen"))
	assert.ErrorContains(t, m.SetCriticalResource("Helium"), "not registered")
	assert.ErrorContains(t, m.SetTargetResource("Helium"), "not registered")
}

// TestManager_InsufficientSpeedsUpMatchingProducers checks the scenario
// from the design brief: an INSUFFICIENT report on Energy must set only
// units producing Energy to FAST, leaving other producers untouched.
func TestManager_InsufficientSpeedsUpMatchingProducers(t *testing.T) {
	m := newTestManager(t)
	energy, _ := m.AddResource("Energy", 3, 50)
	oxygen, _ := m.AddResource("Oxygen", 20, 50)

	generator, err := m.AddUnit("Generator", ResourceAmount{}, ResourceAmount{energy, 10}, time.Millisecond)
	require.NoError(t, err)
	lifeSupport, err := m.AddUnit("Life Support", ResourceAmount{energy, 7}, ResourceAmount{oxygen, 4}, time.Millisecond)
	require.NoError(t, err)

	m.handleEvent(Event{
		ID:       "ev-1",
		Unit:     lifeSupport,
		Resource: energy,
		Status:   StatusInsufficient,
		Priority: PriorityHigh,
		Amount:   7,
	})

	assert.Equal(t, UnitFast, generator.Status(), "the Energy producer speeds up")
	assert.Equal(t, UnitStandard, lifeSupport.Status(), "producers of other resources are untouched")
	assert.True(t, m.Running())
}

func TestManager_CapacitySlowsMatchingProducers(t *testing.T) {
	m := newTestManager(t)
	energy, _ := m.AddResource("Energy", 50, 50)

	generator, err := m.AddUnit("Generator", ResourceAmount{}, ResourceAmount{energy, 10}, time.Millisecond)
	require.NoError(t, err)

	m.handleEvent(Event{
		ID:       "ev-1",
		Unit:     generator,
		Resource: energy,
		Status:   StatusCapacity,
		Priority: PriorityLow,
		Amount:   10,
	})

	assert.Equal(t, UnitSlow, generator.Status())
	assert.True(t, m.Running(), "capacity on a non-target resource does not end the run")
}

func TestManager_CriticalEmptyTerminatesEveryUnit(t *testing.T) {
	m := newTestManager(t)
	oxygen, _ := m.AddResource("Oxygen", 0, 50)
	fuel, _ := m.AddResource("Fuel", 1000, 1000)
	require.NoError(t, m.SetCriticalResource("Oxygen"))

	crew, err := m.AddUnit("Crew", ResourceAmount{oxygen, 1}, ResourceAmount{}, time.Millisecond)
	require.NoError(t, err)
	propulsion, err := m.AddUnit("Propulsion", ResourceAmount{fuel, 5}, ResourceAmount{}, time.Millisecond)
	require.NoError(t, err)

	m.handleEvent(Event{
		ID:       "ev-1",
		Unit:     crew,
		Resource: oxygen,
		Status:   StatusEmpty,
		Priority: PriorityHigh,
		Amount:   1,
	})

	assert.Equal(t, UnitTerminate, crew.Status())
	assert.Equal(t, UnitTerminate, propulsion.Status(), "terminate applies to all units unconditionally")
	assert.False(t, m.Running())
}

func TestManager_TargetCapacityTerminatesEveryUnit(t *testing.T) {
	m := newTestManager(t)
	distance, _ := m.AddResource("Distance", 5000, 5000)
	require.NoError(t, m.SetTargetResource("Distance"))

	propulsion, err := m.AddUnit("Propulsion", ResourceAmount{}, ResourceAmount{distance, 25}, time.Millisecond)
	require.NoError(t, err)

	m.handleEvent(Event{
		ID:       "ev-1",
		Unit:     propulsion,
		Resource: distance,
		Status:   StatusCapacity,
		Priority: PriorityLow,
		Amount:   25,
	})

	assert.Equal(t, UnitTerminate, propulsion.Status())
	assert.False(t, m.Running())
}

// TestManager_LastAppliedWinsWithinDrain documents the inherited policy:
// a later low-priority CAPACITY event overwrites the FAST decision a
// higher-priority event applied moments earlier in the same drain.
func TestManager_LastAppliedWinsWithinDrain(t *testing.T) {
	m := newTestManager(t)
	energy, _ := m.AddResource("Energy", 3, 50)

	generator, err := m.AddUnit("Generator", ResourceAmount{}, ResourceAmount{energy, 10}, time.Millisecond)
	require.NoError(t, err)

	m.queue.Push(Event{ID: "ev-1", Unit: generator, Resource: energy, Status: StatusInsufficient, Priority: PriorityHigh, Amount: 7})
	m.queue.Push(Event{ID: "ev-2", Unit: generator, Resource: energy, Status: StatusCapacity, Priority: PriorityLow, Amount: 10})

	m.step()

	assert.Equal(t, UnitSlow, generator.Status(),
		"the low-priority event drains last and overwrites the FAST decision")
	assert.Equal(t, 0, m.QueueLen())
}

func TestManager_SnapshotReflectsState(t *testing.T) {
	m := newTestManager(t)
	_, err := m.AddResource("Fuel", 900, 1000)
	require.NoError(t, err)
	u, err := m.AddUnit("Propulsion", ResourceAmount{}, ResourceAmount{}, time.Millisecond)
	require.NoError(t, err)
	u.SetStatus(UnitFast)

	snap := m.Snapshot()
	require.Len(t, snap.Resources, 1)
	require.Len(t, snap.Units, 1)
	assert.Equal(t, ResourceView{Name: "Fuel", Amount: 900, Capacity: 1000}, snap.Resources[0])
	assert.Equal(t, UnitView{Name: "Propulsion", Status: UnitFast}, snap.Units[0])
}

// recordingObserver collects ticks and events for assertions.
type recordingObserver struct {
	mu     sync.Mutex
	ticks  int
	events []Event
}

func (o *recordingObserver) ObserveTick(Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ticks++
}

func (o *recordingObserver) ObserveEvent(ev Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *recordingObserver) snapshot() (int, []Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ticks, append([]Event(nil), o.events...)
}

// TestManager_RunOxygenDepletion is the end-to-end depletion scenario:
// a unit consuming an empty Oxygen supply reports EMPTY at high priority,
// the manager latches the run-state down and terminates every unit, and
// Run joins all workers before returning.
func TestManager_RunOxygenDepletion(t *testing.T) {
	obs := &recordingObserver{}
	m := newTestManager(t, WithObserver(obs))

	oxygen, _ := m.AddResource("Oxygen", 0, 50)
	fuel, _ := m.AddResource("Fuel", 1000, 1000)
	require.NoError(t, m.SetCriticalResource("Oxygen"))

	_, err := m.AddUnit("Crew", ResourceAmount{oxygen, 1}, ResourceAmount{}, time.Millisecond, WithBackoff(time.Millisecond))
	require.NoError(t, err)
	_, err = m.AddUnit("Propulsion", ResourceAmount{fuel, 5}, ResourceAmount{}, time.Millisecond, WithBackoff(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = m.Run(ctx)
	require.NoError(t, err, "a policy halt is a clean exit")

	assert.False(t, m.Running())
	for _, uv := range m.Snapshot().Units {
		assert.Equal(t, UnitTerminate, uv.Status, "unit %s", uv.Name)
	}

	ticks, events := obs.snapshot()
	assert.Greater(t, ticks, 0)
	require.NotEmpty(t, events)

	found := false
	for _, ev := range events {
		if ev.Status == StatusEmpty && ev.Resource == oxygen {
			assert.Equal(t, PriorityHigh, ev.Priority)
			found = true
		}
	}
	assert.True(t, found, "the oxygen EMPTY report must reach the observers")
}

// TestManager_RunDestinationReached drives the target resource to
// capacity and expects a clean terminal halt.
func TestManager_RunDestinationReached(t *testing.T) {
	m := newTestManager(t)

	distance, _ := m.AddResource("Distance", 4980, 5000)
	require.NoError(t, m.SetTargetResource("Distance"))

	_, err := m.AddUnit("Propulsion", ResourceAmount{}, ResourceAmount{distance, 25}, time.Millisecond, WithBackoff(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, m.Run(ctx))

	assert.False(t, m.Running())
	amount, _ := distance.Level()
	assert.Equal(t, 5000, amount, "the store clamps exactly at capacity")
}

func TestManager_RunContextCancellation(t *testing.T) {
	m := newTestManager(t)
	fuel, _ := m.AddResource("Fuel", 1000, 1000)
	_, err := m.AddUnit("Propulsion", ResourceAmount{fuel, 5}, ResourceAmount{}, time.Millisecond, WithBackoff(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err = m.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, m.Running())
}

func TestManager_RunTwiceFails(t *testing.T) {
	m := newTestManager(t)
	m.Stop()

	require.NoError(t, m.Run(context.Background()))
	assert.ErrorContains(t, m.Run(context.Background()), "already started")
}

// TestManager_NoMutationAfterTerminalDrain: once the manager has fully
// processed a terminating event, at most one in-flight cycle may still
// land. After Run returns and units are joined, resource levels must be
// frozen.
func TestManager_NoMutationAfterTerminalDrain(t *testing.T) {
	m := newTestManager(t)
	oxygen, _ := m.AddResource("Oxygen", 0, 50)
	fuel, _ := m.AddResource("Fuel", 1000, 1000)
	require.NoError(t, m.SetCriticalResource("Oxygen"))

	_, err := m.AddUnit("Crew", ResourceAmount{oxygen, 1}, ResourceAmount{}, time.Millisecond, WithBackoff(time.Millisecond))
	require.NoError(t, err)
	_, err = m.AddUnit("Propulsion", ResourceAmount{fuel, 5}, ResourceAmount{}, time.Millisecond, WithBackoff(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Run(ctx))

	before, _ := fuel.Level()
	time.Sleep(20 * time.Millisecond)
	after, _ := fuel.Level()
	assert.Equal(t, before, after, "no unit may mutate resources after Run returns")
}

func TestRunState_OneWayLatch(t *testing.T) {
	var s RunState
	assert.True(t, s.Running())

	s.Halt()
	assert.False(t, s.Running())

	// Halting again is a no-op; there is no way back up.
	s.Halt()
	assert.False(t, s.Running())
}
