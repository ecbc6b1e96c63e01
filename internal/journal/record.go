package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/voyager/internal/engine"
)

// BeginRun opens a new run and makes it current. Returns the run ID.
func (j *Journal) BeginRun(ctx context.Context, scenario string) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, started_at)
		VALUES (?, ?, ?)
	`, id, scenario, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	j.runID = id
	return id, nil
}

// EndRun stamps the current run's end time.
func (j *Journal) EndRun(ctx context.Context) error {
	if j.runID == "" {
		return fmt.Errorf("end run: no run in progress")
	}
	_, err := j.db.ExecContext(ctx, `
		UPDATE runs SET ended_at = ? WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339Nano), j.runID)
	if err != nil {
		return fmt.Errorf("end run: %w", err)
	}
	return nil
}

// Record inserts one drained event into the current run. The seq column
// is stamped from the journal's own clock, so rows replay in exactly the
// order the manager processed them.
//
// ON CONFLICT(id) DO NOTHING keeps the write idempotent.
func (j *Journal) Record(ctx context.Context, ev engine.Event) error {
	if j.runID == "" {
		return fmt.Errorf("record event: no run in progress")
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (id, run_id, seq, unit, resource, status, priority, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		ev.ID,
		j.runID,
		j.clock.Next(),
		ev.Unit.Name(),
		ev.Resource.Name(),
		ev.Status.String(),
		ev.Priority.String(),
		ev.Amount,
	)
	if err != nil {
		return fmt.Errorf("record event %s: %w", ev.ID, err)
	}
	return nil
}

// Observer adapts the journal to the manager's observer interface.
// Write failures are logged and skipped rather than propagated: losing a
// journal row must never stall the coordinator loop.
func (j *Journal) Observer() engine.Observer {
	return journalObserver{j}
}

type journalObserver struct {
	j *Journal
}

func (journalObserver) ObserveTick(engine.Snapshot) {}

func (o journalObserver) ObserveEvent(ev engine.Event) {
	if err := o.j.Record(context.Background(), ev); err != nil {
		slog.Error("journal write failed", "event_id", ev.ID, "error", err)
	}
}
