package engine

import (
	"container/heap"
	"sync"
)

// EventQueue is the shared mailbox between units and the manager.
//
// Ordering invariant: Pop yields events in non-increasing priority order,
// FIFO among events of equal priority. A binary heap keyed on
// (priority, push sequence) carries both properties; the sequence is
// stamped from a monotonic clock while the queue lock is held, so
// insertion order within a priority band is exact.
//
// Concurrency: pushed from any unit goroutine, popped only by the manager.
// Push and Pop are mutually exclusive, so a full drain always observes a
// queue state consistent with some serial interleaving of the pushes.
type EventQueue struct {
	mu    sync.Mutex
	items eventHeap
	clock Clock
}

// queuedEvent pairs an event with its push sequence for the FIFO tie-break.
type queuedEvent struct {
	event Event
	seq   int64
}

type eventHeap []queuedEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].event.Priority != h[j].event.Priority {
		return h[i].event.Priority > h[j].event.Priority
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(queuedEvent)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	// Nil out the slot so the event's unit/resource pointers do not keep
	// the underlying array alive.
	old[n-1] = queuedEvent{}
	*h = old[:n-1]
	return item
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{items: make(eventHeap, 0, 64)}
}

// Push inserts an event, keeping the ordering invariant.
// Thread-safe: may be called from any unit goroutine.
func (q *EventQueue) Push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(&q.items, queuedEvent{event: ev, seq: q.clock.Next()})
}

// Pop removes and returns the highest-priority event, oldest first among
// ties. Returns false when the queue is empty; safe to call repeatedly,
// which is how the manager drains each tick.
func (q *EventQueue) Pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Event{}, false
	}
	return heap.Pop(&q.items).(queuedEvent).event, true
}

// Len returns the number of live entries.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
