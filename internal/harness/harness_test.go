package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/voyager/internal/scenario"
)

func loadTestCase(t *testing.T, name string) *Case {
	t.Helper()
	c, err := LoadCase(filepath.Join("testdata", "cases", name))
	require.NoError(t, err)
	return c
}

func TestRun_SprintCase(t *testing.T) {
	result, err := Run(loadTestCase(t, "sprint.yaml"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
	assert.True(t, result.Halted)
	assert.NotEmpty(t, result.Events)
}

func TestRun_DepletionCase(t *testing.T) {
	result, err := Run(loadTestCase(t, "depletion.yaml"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
	assert.True(t, result.Halted)
}

func TestRun_TimeoutLeavesHaltedFalse(t *testing.T) {
	c := &Case{
		Name:        "idle",
		Description: "no terminal condition within the timeout",
		Scenario: scenario.Scenario{
			Name:     "idle",
			Critical: "Oxygen",
			Target:   "Distance",
			Resources: []scenario.ResourceSpec{
				{Name: "Oxygen", Amount: 50, Capacity: 50},
				{Name: "Distance", Amount: 0, Capacity: 1_000_000},
			},
			Units: []scenario.UnitSpec{
				{
					Name:           "Propulsion",
					Produces:       &scenario.BindingSpec{Resource: "Distance", Amount: 1},
					ProcessingTime: scenario.Duration(1_000_000),
				},
			},
		},
		Timeout: scenario.Duration(100_000_000), // 100ms
		Assertions: []Assertion{
			{Type: AssertHalted},
		},
	}

	result, err := Run(c)
	require.NoError(t, err, "hitting the deadline is not a harness error")

	assert.False(t, result.Halted)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "run ended at the case timeout")
}

func TestRun_FailedAssertionsAreCollected(t *testing.T) {
	c := loadTestCase(t, "sprint.yaml")
	c.Assertions = append(c.Assertions,
		Assertion{Type: AssertUnitStatus, Unit: "Propulsion", Status: "FAST"},
		Assertion{Type: AssertEventsContain, Status: "LOW"},
	)

	result, err := Run(c)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 2, "both extra assertions fail, the original five still pass")
}

func TestRun_BuildErrorSurfaces(t *testing.T) {
	c := &Case{
		Name:        "dangling",
		Description: "binding references a resource the build rejects",
		Scenario: scenario.Scenario{
			Name:     "dangling",
			Critical: "Fuel",
			Target:   "Fuel",
			Resources: []scenario.ResourceSpec{
				{Name: "Fuel", Amount: 10, Capacity: 10},
			},
			Units: []scenario.UnitSpec{
				{
					Name:           "Burner",
					Consumes:       &scenario.BindingSpec{Resource: "Antimatter", Amount: 1},
					ProcessingTime: scenario.Duration(1_000_000),
				},
			},
		},
		Assertions: []Assertion{{Type: AssertHalted}},
	}

	_, err := Run(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `build case "dangling"`)
}
