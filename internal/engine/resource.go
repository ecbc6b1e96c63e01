package engine

import (
	"fmt"
	"sync"
)

// Resource is a named, capacity-bounded quantity store shared by every
// unit that consumes or produces it.
//
// All amount changes go through Consume and Deposit. Each is a single
// critical section, so the invariant 0 <= amount <= capacity holds at
// every observation point regardless of how many units share the resource.
type Resource struct {
	mu          sync.Mutex
	name        string
	amount      int
	maxCapacity int
}

// NewResource creates a resource holding amount units out of maxCapacity.
//
// Panics if the initial state violates 0 <= amount <= maxCapacity. A bad
// initial state is a programming error, not a runtime condition; the
// scenario loader validates its inputs before construction.
func NewResource(name string, amount, maxCapacity int) *Resource {
	if maxCapacity < 0 || amount < 0 || amount > maxCapacity {
		panic(fmt.Sprintf("engine: invalid resource %q: amount %d, capacity %d", name, amount, maxCapacity))
	}
	return &Resource{name: name, amount: amount, maxCapacity: maxCapacity}
}

// Name returns the resource's unique name.
func (r *Resource) Name() string { return r.name }

// Capacity returns the fixed maximum capacity.
func (r *Resource) Capacity() int { return r.maxCapacity }

// Level returns a point-in-time consistent (amount, capacity) pair.
// Takes the same lock as the mutators; intended for presentation reads.
func (r *Resource) Level() (amount, capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.amount, r.maxCapacity
}

// Consume atomically checks and decrements the stored amount by n.
//
// Returns StatusOK on success. On failure nothing is consumed:
// StatusEmpty when the resource is fully drained, StatusInsufficient when
// some amount remains but less than n.
func (r *Resource) Consume(n int) Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.amount >= n {
		r.amount -= n
		return StatusOK
	}
	if r.amount == 0 {
		return StatusEmpty
	}
	return StatusInsufficient
}

// Deposit adds up to n units without exceeding capacity and returns the
// amount actually deposited. The caller keeps whatever did not fit.
func (r *Resource) Deposit(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	space := r.maxCapacity - r.amount
	if space >= n {
		r.amount += n
		return n
	}
	r.amount += space
	return space
}

// ResourceAmount binds a resource to a per-cycle quantity. A nil Resource
// models a pure source (nothing consumed) or a pure sink (nothing
// produced); the quantity is meaningless in that case.
type ResourceAmount struct {
	Resource *Resource
	Amount   int
}
