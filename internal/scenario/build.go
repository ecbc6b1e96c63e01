package scenario

import (
	"fmt"
	"time"

	"github.com/roach88/voyager/internal/engine"
)

// Build constructs a configured engine.Manager from a validated scenario.
// The given options are forwarded to the manager (observers, tick
// interval, ID generator).
func (s *Scenario) Build(opts ...engine.ManagerOption) (*engine.Manager, error) {
	m := engine.NewManager(opts...)

	for _, rs := range s.Resources {
		if _, err := m.AddResource(rs.Name, rs.Amount, rs.Capacity); err != nil {
			return nil, fmt.Errorf("build scenario %q: %w", s.Name, err)
		}
	}

	for _, us := range s.Units {
		consumed, err := resolveBinding(m, us.Consumes)
		if err != nil {
			return nil, fmt.Errorf("build scenario %q: unit %q: %w", s.Name, us.Name, err)
		}
		produced, err := resolveBinding(m, us.Produces)
		if err != nil {
			return nil, fmt.Errorf("build scenario %q: unit %q: %w", s.Name, us.Name, err)
		}
		if _, err := m.AddUnit(us.Name, consumed, produced, time.Duration(us.ProcessingTime)); err != nil {
			return nil, fmt.Errorf("build scenario %q: %w", s.Name, err)
		}
	}

	if err := m.SetCriticalResource(s.Critical); err != nil {
		return nil, fmt.Errorf("build scenario %q: %w", s.Name, err)
	}
	if err := m.SetTargetResource(s.Target); err != nil {
		return nil, fmt.Errorf("build scenario %q: %w", s.Name, err)
	}

	return m, nil
}

func resolveBinding(m *engine.Manager, b *BindingSpec) (engine.ResourceAmount, error) {
	if b == nil {
		return engine.ResourceAmount{}, nil
	}
	r, ok := m.Resource(b.Resource)
	if !ok {
		return engine.ResourceAmount{}, fmt.Errorf("unknown resource %q", b.Resource)
	}
	return engine.ResourceAmount{Resource: r, Amount: b.Amount}, nil
}
