package journal

import (
	"strings"
)

// EventFilter narrows an event query. Zero-value fields are ignored.
// All values are parameterized, never interpolated, and every compiled
// query keeps ORDER BY seq so filtered traces replay in drain order.
type EventFilter struct {
	Unit     string
	Resource string
	Status   string
	Priority string
}

// IsZero reports whether the filter matches everything.
func (f EventFilter) IsZero() bool {
	return f == EventFilter{}
}

// compile returns the WHERE clause fragment (without the leading AND)
// and its parameters. An empty filter compiles to "1 = 1".
func (f EventFilter) compile() (string, []any) {
	var parts []string
	var params []any

	add := func(column, value string) {
		if value == "" {
			return
		}
		parts = append(parts, column+" = ?")
		params = append(params, value)
	}
	add("unit", f.Unit)
	add("resource", f.Resource)
	add("status", f.Status)
	add("priority", f.Priority)

	if len(parts) == 0 {
		return "1 = 1", nil
	}
	return strings.Join(parts, " AND "), params
}
