package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Summary renders a result's final state as deterministic text for
// golden comparison. Drained events are excluded: their timing and count
// vary with scheduling, while final levels and statuses do not for
// cases built to terminate deterministically.
func Summary(name string, result *Result) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "case: %s\n", name)
	fmt.Fprintf(&buf, "halted: %t\n", result.Halted)

	fmt.Fprintf(&buf, "\nresources:\n")
	for _, rv := range result.Snapshot.Resources {
		fmt.Fprintf(&buf, "  %s: %d/%d\n", rv.Name, rv.Amount, rv.Capacity)
	}

	fmt.Fprintf(&buf, "\nunits:\n")
	for _, uv := range result.Snapshot.Units {
		fmt.Fprintf(&buf, "  %s: %s\n", uv.Name, uv.Status)
	}
	return []byte(buf.String())
}

// AssertGolden compares a result's summary against the golden file
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Summary(name, result))
}

// RunWithGolden executes a case and compares its summary against the
// golden file named after the case.
func RunWithGolden(t *testing.T, c *Case) (*Result, error) {
	t.Helper()
	result, err := Run(c)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, c.Name, result)
	return result, nil
}
