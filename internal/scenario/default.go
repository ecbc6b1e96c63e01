package scenario

import "time"

// Default returns the built-in voyage: a spacecraft burning Fuel for
// Distance and Energy, generating Oxygen for the Crew, until either the
// Oxygen runs out or the Distance goal is reached.
func Default() *Scenario {
	return &Scenario{
		Name:     "voyage",
		Critical: "Oxygen",
		Target:   "Distance",
		Resources: []ResourceSpec{
			{Name: "Fuel", Amount: 1000, Capacity: 1000},
			{Name: "Oxygen", Amount: 20, Capacity: 50},
			{Name: "Energy", Amount: 30, Capacity: 50},
			{Name: "Distance", Amount: 0, Capacity: 5000},
		},
		Units: []UnitSpec{
			{
				Name:           "Propulsion",
				Consumes:       &BindingSpec{Resource: "Fuel", Amount: 5},
				Produces:       &BindingSpec{Resource: "Distance", Amount: 25},
				ProcessingTime: Duration(50 * time.Millisecond),
			},
			{
				Name:           "Life Support",
				Consumes:       &BindingSpec{Resource: "Energy", Amount: 7},
				Produces:       &BindingSpec{Resource: "Oxygen", Amount: 4},
				ProcessingTime: Duration(10 * time.Millisecond),
			},
			{
				Name:           "Crew",
				Consumes:       &BindingSpec{Resource: "Oxygen", Amount: 1},
				ProcessingTime: Duration(2 * time.Millisecond),
			},
			{
				Name:           "Generator",
				Consumes:       &BindingSpec{Resource: "Fuel", Amount: 5},
				Produces:       &BindingSpec{Resource: "Energy", Amount: 10},
				ProcessingTime: Duration(20 * time.Millisecond),
			},
		},
	}
}
