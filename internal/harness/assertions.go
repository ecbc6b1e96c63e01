package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/voyager/internal/engine"
)

// AssertionError describes one failed assertion with the drained events
// attached for context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Events   []engine.Event
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Events) > 0 {
		fmt.Fprintf(&buf, "\nDrained events:\n")
		for i, ev := range e.Events {
			fmt.Fprintf(&buf, "  [%d] %s %s %s/%s amount=%d\n",
				i+1, ev.Unit.Name(), ev.Resource.Name(), ev.Status, ev.Priority, ev.Amount)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and
// returns the failure messages. All assertions run; nothing fails fast.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertHalted:
			err = assertHalted(result)
		case AssertResourceLevel:
			err = assertResourceLevel(result, a)
		case AssertUnitStatus:
			err = assertUnitStatus(result, a)
		case AssertEventsContain:
			err = assertEventsContain(result, a)
		case AssertEventsOrder:
			err = assertEventsOrder(result, a)
		default:
			err = fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertHalted(result *Result) error {
	if result.Halted {
		return nil
	}
	return &AssertionError{
		Type:     AssertHalted,
		Expected: "run halted by policy",
		Actual:   "run ended at the case timeout",
		Events:   result.Events,
	}
}

func assertResourceLevel(result *Result, a Assertion) error {
	for _, rv := range result.Snapshot.Resources {
		if rv.Name != a.Resource {
			continue
		}
		if a.Amount != nil && rv.Amount != *a.Amount {
			return &AssertionError{
				Type:     AssertResourceLevel,
				Expected: fmt.Sprintf("%s = %d", a.Resource, *a.Amount),
				Actual:   fmt.Sprintf("%s = %d", a.Resource, rv.Amount),
				Events:   result.Events,
			}
		}
		if a.Min != nil && rv.Amount < *a.Min {
			return &AssertionError{
				Type:     AssertResourceLevel,
				Expected: fmt.Sprintf("%s >= %d", a.Resource, *a.Min),
				Actual:   fmt.Sprintf("%s = %d", a.Resource, rv.Amount),
				Events:   result.Events,
			}
		}
		if a.Max != nil && rv.Amount > *a.Max {
			return &AssertionError{
				Type:     AssertResourceLevel,
				Expected: fmt.Sprintf("%s <= %d", a.Resource, *a.Max),
				Actual:   fmt.Sprintf("%s = %d", a.Resource, rv.Amount),
				Events:   result.Events,
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertResourceLevel,
		Expected: fmt.Sprintf("resource %q in final snapshot", a.Resource),
		Actual:   "not present",
		Events:   result.Events,
	}
}

func assertUnitStatus(result *Result, a Assertion) error {
	for _, uv := range result.Snapshot.Units {
		if uv.Name != a.Unit {
			continue
		}
		if uv.Status.String() != a.Status {
			return &AssertionError{
				Type:     AssertUnitStatus,
				Expected: fmt.Sprintf("%s in %s", a.Unit, a.Status),
				Actual:   fmt.Sprintf("%s in %s", a.Unit, uv.Status),
				Events:   result.Events,
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertUnitStatus,
		Expected: fmt.Sprintf("unit %q in final snapshot", a.Unit),
		Actual:   "not present",
		Events:   result.Events,
	}
}

func assertEventsContain(result *Result, a Assertion) error {
	for _, ev := range result.Events {
		if ev.Status.String() != a.Status {
			continue
		}
		if a.Resource != "" && ev.Resource.Name() != a.Resource {
			continue
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertEventsContain,
		Expected: fmt.Sprintf("a drained %s event%s", a.Status, scopedTo(a.Resource)),
		Actual:   "not found",
		Events:   result.Events,
	}
}

// assertEventsOrder checks that the statuses first occur in the listed
// order. Intervening events are allowed.
func assertEventsOrder(result *Result, a Assertion) error {
	positions := make(map[string]int)
	for i, ev := range result.Events {
		if a.Resource != "" && ev.Resource.Name() != a.Resource {
			continue
		}
		s := ev.Status.String()
		if _, seen := positions[s]; !seen {
			positions[s] = i + 1
		}
	}

	for _, status := range a.Statuses {
		if positions[status] == 0 {
			return &AssertionError{
				Type:     AssertEventsOrder,
				Expected: fmt.Sprintf("all statuses drained%s: %v", scopedTo(a.Resource), a.Statuses),
				Actual:   fmt.Sprintf("missing status: %s", status),
				Events:   result.Events,
			}
		}
	}

	for i := 1; i < len(a.Statuses); i++ {
		prev, curr := a.Statuses[i-1], a.Statuses[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertEventsOrder,
				Expected: fmt.Sprintf("statuses in order: %v", a.Statuses),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Events: result.Events,
			}
		}
	}
	return nil
}

func scopedTo(resource string) string {
	if resource == "" {
		return ""
	}
	return fmt.Sprintf(" for %s", resource)
}
