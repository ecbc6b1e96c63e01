package engine

import "github.com/google/uuid"

// Status classifies the resource condition a unit reports.
//
// StatusLow is reserved: the manager's policy recognizes it, but no unit
// transition currently emits it.
type Status int

const (
	StatusOK Status = iota
	StatusLow
	StatusEmpty
	StatusInsufficient
	StatusCapacity
)

// String returns the status name for logs and journal records.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusLow:
		return "LOW"
	case StatusEmpty:
		return "EMPTY"
	case StatusInsufficient:
		return "INSUFFICIENT"
	case StatusCapacity:
		return "CAPACITY"
	default:
		return "UNKNOWN"
	}
}

// Priority ranks events for manager attention. The domain is closed:
// supply failures are high, storage overflows are low.
type Priority int

const (
	PriorityLow  Priority = 0
	PriorityHigh Priority = 1
)

// String returns the priority name for logs and journal records.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "HIGH"
	case PriorityLow:
		return "LOW"
	default:
		return "UNKNOWN"
	}
}

// Event is an immutable snapshot of a resource condition, created by a
// unit at the moment it detects the problem and consumed exactly once by
// the manager. Amount carries the quantity the condition concerns: the
// required amount for a failed convert, the produced amount for an
// overflowing store.
type Event struct {
	ID       string
	Unit     *Unit
	Resource *Resource
	Status   Status
	Priority Priority
	Amount   int
}

// IDGenerator stamps events with unique identifiers.
// Implemented by UUIDv7Generator (production) and
// testutil.SequenceGenerator (deterministic tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 event IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so journal rows
// sort by creation time even across runs.
//
// Thread-safety: stateless, safe for concurrent use from every unit.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7 string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
