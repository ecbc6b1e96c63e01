package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/voyager/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal  string
	RunID    string
	List     bool
	Unit     string
	Resource string
	Status   string
	Priority string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded events from a journal",
		Long: `Read a recorded run back from the journal.

Events are listed in the exact order the manager drained them, with the
reporting unit, the resource concerned, status, priority and amount.

Examples:
  voyager trace --journal ./voyager.db
  voyager trace --journal ./voyager.db --list
  voyager trace --journal ./voyager.db --status EMPTY --resource Oxygen
  voyager trace --journal ./voyager.db --run <run-id> --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return traceRun(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to trace (default: latest)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list recorded runs instead of tracing one")
	cmd.Flags().StringVar(&opts.Unit, "unit", "", "only events reported by this unit")
	cmd.Flags().StringVar(&opts.Resource, "resource", "", "only events concerning this resource")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only events with this status (EMPTY, INSUFFICIENT, CAPACITY, ...)")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "only events with this priority (HIGH, LOW)")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func traceRun(opts *TraceOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	jnl, err := journal.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer jnl.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.List {
		return listRuns(ctx, jnl, opts, cmd)
	}

	runID := opts.RunID
	if runID == "" {
		latest, latestErr := jnl.LatestRun(ctx)
		if latestErr != nil {
			return WrapExitError(ExitCommandError, "failed to resolve latest run", latestErr)
		}
		runID = latest.ID
	}

	filter := journal.EventFilter{
		Unit:     opts.Unit,
		Resource: opts.Resource,
		Status:   opts.Status,
		Priority: opts.Priority,
	}
	records, err := jnl.EventsMatching(ctx, runID, filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	if opts.Format == "json" {
		return out.Success(map[string]any{
			"run_id": runID,
			"events": records,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run %s: %d events\n", runID, len(records))
	for _, rec := range records {
		fmt.Fprintf(cmd.OutOrStdout(), "%6d  %-8s %-12s %-20s %-20s %d\n",
			rec.Seq, rec.Priority, rec.Status, rec.Resource, rec.Unit, rec.Amount)
	}
	return nil
}

func listRuns(ctx context.Context, jnl *journal.Journal, opts *TraceOptions, cmd *cobra.Command) error {
	runs, err := jnl.Runs(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return out.Success(map[string]any{"runs": runs})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d recorded runs\n", len(runs))
	for _, r := range runs {
		ended := r.EndedAt
		if ended == "" {
			ended = "(open)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %s .. %s\n", r.ID, r.Scenario, r.StartedAt, ended)
	}
	return nil
}
