package journal

import (
	"context"
	"fmt"
)

// RunInfo summarizes one recorded run.
type RunInfo struct {
	ID        string
	Scenario  string
	StartedAt string
	EndedAt   string // empty while a run is still open
}

// Record is one journalled event row.
type Record struct {
	ID       string
	Seq      int64
	Unit     string
	Resource string
	Status   string
	Priority string
	Amount   int
}

// Runs lists recorded runs, newest first.
func (j *Journal) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, scenario, started_at, COALESCE(ended_at, '')
		FROM runs
		ORDER BY started_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.ID, &r.Scenario, &r.StartedAt, &r.EndedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	if runs == nil {
		runs = []RunInfo{}
	}
	return runs, nil
}

// Events returns all recorded events for a run in drain order.
func (j *Journal) Events(ctx context.Context, runID string) ([]Record, error) {
	return j.EventsMatching(ctx, runID, EventFilter{})
}

// EventsMatching returns a run's events narrowed by a filter, still in
// drain order.
func (j *Journal) EventsMatching(ctx context.Context, runID string, filter EventFilter) ([]Record, error) {
	where, params := filter.compile()
	query := `
		SELECT id, seq, unit, resource, status, priority, amount
		FROM events
		WHERE run_id = ? AND ` + where + `
		ORDER BY seq ASC
	`
	args := append([]any{runID}, params...)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Seq, &rec.Unit, &rec.Resource, &rec.Status, &rec.Priority, &rec.Amount); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// LatestRun returns the most recently started run.
func (j *Journal) LatestRun(ctx context.Context) (RunInfo, error) {
	runs, err := j.Runs(ctx)
	if err != nil {
		return RunInfo{}, err
	}
	if len(runs) == 0 {
		return RunInfo{}, fmt.Errorf("journal has no recorded runs")
	}
	return runs[0], nil
}
