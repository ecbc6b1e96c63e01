package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/voyager/internal/engine"
)

// Defaults for cases that leave tick or timeout unset.
const (
	DefaultTick    = 5 * time.Millisecond
	DefaultTimeout = 5 * time.Second
)

// Run executes one case and evaluates its assertions.
//
// The scenario is built fresh with a recording observer, run under the
// case's deadline, and the final snapshot taken after every unit
// goroutine has joined. Hitting the deadline is not an error; it leaves
// Result.Halted false for the assertions to judge.
func Run(c *Case) (*Result, error) {
	tick := time.Duration(c.Tick)
	if tick <= 0 {
		tick = DefaultTick
	}
	timeout := time.Duration(c.Timeout)
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	rec := &recorder{}
	m, err := c.Scenario.Build(
		engine.WithTickInterval(tick),
		engine.WithObserver(rec),
	)
	if err != nil {
		return nil, fmt.Errorf("build case %q: %w", c.Name, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	runErr := m.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.DeadlineExceeded) {
		return nil, fmt.Errorf("run case %q: %w", c.Name, runErr)
	}

	result := NewResult()
	result.Halted = runErr == nil
	result.Snapshot = m.Snapshot()
	result.Events = rec.drained()

	for _, msg := range EvaluateAssertions(result, c.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
