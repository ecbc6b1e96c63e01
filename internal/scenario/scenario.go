// Package scenario loads and validates voyage definitions: which
// resources exist, which units convert what into what, and which
// resources are designated life-critical and goal. Scenarios are plain
// declarative YAML; validation is fail-fast and happens before any
// worker starts.
package scenario

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines one simulation run.
type Scenario struct {
	// Name identifies the scenario in logs and the journal.
	Name string `yaml:"name"`

	// Critical names the life-critical resource: a unit reporting it
	// empty terminates the run.
	Critical string `yaml:"critical_resource"`

	// Target names the goal resource: reaching its capacity terminates
	// the run.
	Target string `yaml:"target_resource"`

	// Resources declares the shared pool.
	Resources []ResourceSpec `yaml:"resources"`

	// Units declares the production units and their bindings.
	Units []UnitSpec `yaml:"units"`
}

// ResourceSpec declares one capacity-bounded resource.
type ResourceSpec struct {
	Name     string `yaml:"name"`
	Amount   int    `yaml:"amount"`
	Capacity int    `yaml:"capacity"`
}

// UnitSpec declares one production unit. Consumes and Produces are both
// optional: a unit without Consumes is a pure source, one without
// Produces a pure sink.
type UnitSpec struct {
	Name           string       `yaml:"name"`
	Consumes       *BindingSpec `yaml:"consumes,omitempty"`
	Produces       *BindingSpec `yaml:"produces,omitempty"`
	ProcessingTime Duration     `yaml:"processing_time"`
}

// BindingSpec ties a unit to a resource with a per-cycle quantity.
type BindingSpec struct {
	Resource string `yaml:"resource"`
	Amount   int    `yaml:"amount"`
}

// Duration wraps time.Duration with YAML support for strings like "50ms".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Validate checks the scenario for configuration errors: duplicate or
// missing names, amounts outside [0, capacity], bindings referencing
// unknown resources, non-positive quantities or processing times, and
// missing critical/target designations. All violations are reported
// together.
func (s *Scenario) Validate() error {
	var errs []error

	if s.Name == "" {
		errs = append(errs, errors.New("scenario name is required"))
	}
	if len(s.Resources) == 0 {
		errs = append(errs, errors.New("at least one resource is required"))
	}
	if len(s.Units) == 0 {
		errs = append(errs, errors.New("at least one unit is required"))
	}

	resources := make(map[string]bool, len(s.Resources))
	for _, r := range s.Resources {
		if r.Name == "" {
			errs = append(errs, errors.New("resource name is required"))
			continue
		}
		if resources[r.Name] {
			errs = append(errs, fmt.Errorf("resource %q: duplicate name", r.Name))
		}
		resources[r.Name] = true
		if r.Capacity < 0 || r.Amount < 0 || r.Amount > r.Capacity {
			errs = append(errs, fmt.Errorf("resource %q: amount %d outside [0, %d]", r.Name, r.Amount, r.Capacity))
		}
	}

	units := make(map[string]bool, len(s.Units))
	for _, u := range s.Units {
		if u.Name == "" {
			errs = append(errs, errors.New("unit name is required"))
			continue
		}
		if units[u.Name] {
			errs = append(errs, fmt.Errorf("unit %q: duplicate name", u.Name))
		}
		units[u.Name] = true

		if u.ProcessingTime <= 0 {
			errs = append(errs, fmt.Errorf("unit %q: processing_time must be positive", u.Name))
		}
		errs = append(errs, validateBinding(u.Name, "consumes", u.Consumes, resources)...)
		errs = append(errs, validateBinding(u.Name, "produces", u.Produces, resources)...)
	}

	if s.Critical == "" {
		errs = append(errs, errors.New("critical_resource is required"))
	} else if len(resources) > 0 && !resources[s.Critical] {
		errs = append(errs, fmt.Errorf("critical_resource %q is not declared", s.Critical))
	}
	if s.Target == "" {
		errs = append(errs, errors.New("target_resource is required"))
	} else if len(resources) > 0 && !resources[s.Target] {
		errs = append(errs, fmt.Errorf("target_resource %q is not declared", s.Target))
	}

	return errors.Join(errs...)
}

func validateBinding(unit, kind string, b *BindingSpec, resources map[string]bool) []error {
	if b == nil {
		return nil
	}
	var errs []error
	if !resources[b.Resource] {
		errs = append(errs, fmt.Errorf("unit %q: %s references unknown resource %q", unit, kind, b.Resource))
	}
	if b.Amount <= 0 {
		errs = append(errs, fmt.Errorf("unit %q: %s amount must be positive", unit, kind))
	}
	return errs
}
