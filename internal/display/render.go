// Package display renders the live dashboard: current resource levels
// and unit statuses, refreshed in place on an ANSI terminal. The refresh
// interval is a presentation concern; the renderer throttles itself and
// never blocks the coordinator for long.
package display

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/voyager/internal/engine"
)

// Terminal control sequences for in-place refresh.
const (
	ansiClear     = "\033[2J"
	ansiHome      = "\033[H"
	ansiClearLine = "\033[K"
)

// DefaultRefreshInterval throttles dashboard redraws.
const DefaultRefreshInterval = time.Second

// Renderer draws snapshots to a writer. It implements engine.Observer
// and runs on the manager goroutine, so ObserveTick drops frames inside
// the refresh interval instead of drawing every tick.
type Renderer struct {
	w        io.Writer
	interval time.Duration
	last     time.Time
	ansi     bool
	printer  *message.Printer
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRefreshInterval overrides the redraw throttle.
func WithRefreshInterval(d time.Duration) Option {
	return func(r *Renderer) {
		r.interval = d
	}
}

// WithANSI toggles the clear/home control sequences. Disabled for plain
// writers (tests, piped output).
func WithANSI(enabled bool) Option {
	return func(r *Renderer) {
		r.ansi = enabled
	}
}

// New creates a renderer writing to w. Amounts are grouped for
// readability (1,000 rather than 1000).
func New(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		w:        w,
		interval: DefaultRefreshInterval,
		ansi:     true,
		printer:  message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ObserveTick redraws the dashboard if the refresh interval has passed.
func (r *Renderer) ObserveTick(snap engine.Snapshot) {
	now := time.Now()
	if now.Sub(r.last) < r.interval {
		return
	}
	r.last = now
	r.Render(snap)
}

// ObserveEvent is a no-op; drained events reach the log and the journal,
// not the dashboard.
func (r *Renderer) ObserveEvent(engine.Event) {}

// Render draws the dashboard unconditionally.
func (r *Renderer) Render(snap engine.Snapshot) {
	if r.ansi {
		fmt.Fprint(r.w, ansiClear, ansiHome)
	}

	r.line("Current Resource Amounts:")
	r.line("-------------------------")
	for _, res := range snap.Resources {
		if r.ansi {
			fmt.Fprint(r.w, ansiClearLine)
		}
		r.printer.Fprintf(r.w, "%s: %d / %d\n", res.Name, res.Amount, res.Capacity)
	}
	r.line("")

	r.line("System Statuses:")
	r.line("----------------")
	for _, unit := range snap.Units {
		r.line(fmt.Sprintf("%-20s: %s", unit.Name, unit.Status))
	}
	r.line("")
}

func (r *Renderer) line(s string) {
	if r.ansi {
		fmt.Fprint(r.w, ansiClearLine)
	}
	fmt.Fprintln(r.w, s)
}
