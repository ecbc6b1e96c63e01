package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/voyager/internal/scenario"
)

// Case is one conformance case: a scenario plus assertions about the
// outcome of running it.
type Case struct {
	// Name uniquely identifies this case and names its golden file.
	Name string `yaml:"name"`

	// Description explains what behavior this case pins down.
	Description string `yaml:"description"`

	// Scenario is the simulation to run, inlined.
	Scenario scenario.Scenario `yaml:"scenario"`

	// Tick overrides the coordinator tick interval. Defaults to 5ms so
	// cases finish quickly.
	Tick scenario.Duration `yaml:"tick,omitempty"`

	// Timeout bounds the run. A case whose scenario never reaches a
	// terminal condition ends here with Result.Halted false.
	// Defaults to 5s.
	Timeout scenario.Duration `yaml:"timeout,omitempty"`

	// Assertions validate the final state and the drained events.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of a run's outcome.
type Assertion struct {
	// Type selects the check:
	//   - "halted": the run ended by policy, not by the timeout
	//   - "resource_level": a resource's final amount (exact or bounded)
	//   - "unit_status": a unit's final operating mode
	//   - "events_contain": some drained event matches resource/status
	//   - "events_order": statuses were first drained in this order
	Type string `yaml:"type"`

	// Resource names the resource (resource_level, events_contain, and
	// optionally events_order to scope it to one resource).
	Resource string `yaml:"resource,omitempty"`

	// Unit names the unit (unit_status).
	Unit string `yaml:"unit,omitempty"`

	// Status is a unit status name for unit_status (STANDARD, FAST, ...)
	// or an event status name for events_contain (EMPTY, CAPACITY, ...).
	Status string `yaml:"status,omitempty"`

	// Amount is the exact expected level (resource_level). Min/Max bound
	// the level instead when exactness is scheduler-dependent.
	Amount *int `yaml:"amount,omitempty"`
	Min    *int `yaml:"min,omitempty"`
	Max    *int `yaml:"max,omitempty"`

	// Statuses is the expected first-occurrence order (events_order).
	Statuses []string `yaml:"statuses,omitempty"`
}

// Assertion type constants.
const (
	AssertHalted        = "halted"
	AssertResourceLevel = "resource_level"
	AssertUnitStatus    = "unit_status"
	AssertEventsContain = "events_contain"
	AssertEventsOrder   = "events_order"
)

// LoadCase reads and parses a case YAML file. Unknown fields are
// rejected to catch typos, and the embedded scenario is validated.
func LoadCase(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case: %w", err)
	}

	var c Case
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("case %s: decode: %w", path, err)
	}

	if err := validateCase(&c); err != nil {
		return nil, fmt.Errorf("case %s: %w", path, err)
	}
	return &c, nil
}

func validateCase(c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Description == "" {
		return fmt.Errorf("description is required")
	}
	if err := c.Scenario.Validate(); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	if len(c.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, a := range c.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertHalted:
		// No fields required.
	case AssertResourceLevel:
		if a.Resource == "" {
			return fmt.Errorf("assertions[%d]: resource is required for resource_level", index)
		}
		if a.Amount == nil && a.Min == nil && a.Max == nil {
			return fmt.Errorf("assertions[%d]: one of amount, min, max is required for resource_level", index)
		}
		if a.Amount != nil && (a.Min != nil || a.Max != nil) {
			return fmt.Errorf("assertions[%d]: amount excludes min/max", index)
		}
	case AssertUnitStatus:
		if a.Unit == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: unit and status are required for unit_status", index)
		}
	case AssertEventsContain:
		if a.Status == "" {
			return fmt.Errorf("assertions[%d]: status is required for events_contain", index)
		}
	case AssertEventsOrder:
		if len(a.Statuses) < 2 {
			return fmt.Errorf("assertions[%d]: at least two statuses are required for events_order", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
