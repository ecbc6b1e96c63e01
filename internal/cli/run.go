package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/voyager/internal/display"
	"github.com/roach88/voyager/internal/engine"
	"github.com/roach88/voyager/internal/journal"
	"github.com/roach88/voyager/internal/scenario"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Scenario  string
	Journal   string
	Tick      time.Duration
	Refresh   time.Duration
	NoDisplay bool
	For       time.Duration
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation until a terminal condition",
		Long: `Run a voyage simulation.

Loads a scenario (the built-in voyage if none is given), starts one
goroutine per production unit plus the coordinating manager, and runs
until the life-critical resource is depleted, the target resource
reaches capacity, or the command is interrupted.

Example:
  voyager run
  voyager run --scenario ./voyage.yaml --journal ./voyager.db
  voyager run --for 30s --no-display --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "path to scenario YAML (default: built-in voyage)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (optional)")
	cmd.Flags().DurationVar(&opts.Tick, "tick", engine.DefaultTickInterval, "coordinator tick interval")
	cmd.Flags().DurationVar(&opts.Refresh, "refresh", display.DefaultRefreshInterval, "dashboard refresh interval")
	cmd.Flags().BoolVar(&opts.NoDisplay, "no-display", false, "disable the terminal dashboard")
	cmd.Flags().DurationVar(&opts.For, "for", 0, "stop after this duration even without a terminal event (0 = unlimited)")

	return cmd
}

func runSimulation(opts *RunOptions, cmd *cobra.Command) error {
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	sc, err := loadScenario(opts.Scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	slog.Info("scenario loaded", "name", sc.Name, "resources", len(sc.Resources), "units", len(sc.Units))

	managerOpts := []engine.ManagerOption{engine.WithTickInterval(opts.Tick)}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()
	if opts.For > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.For)
		defer cancel()
	}

	var jnl *journal.Journal
	if opts.Journal != "" {
		jnl, err = journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := jnl.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()

		runID, beginErr := jnl.BeginRun(ctx, sc.Name)
		if beginErr != nil {
			return WrapExitError(ExitCommandError, "failed to begin journal run", beginErr)
		}
		slog.Info("journal run started", "run_id", runID, "path", opts.Journal)
		managerOpts = append(managerOpts, engine.WithObserver(jnl.Observer()))
	}

	var renderer *display.Renderer
	if !opts.NoDisplay {
		renderer = display.New(cmd.OutOrStdout(), display.WithRefreshInterval(opts.Refresh))
		managerOpts = append(managerOpts, engine.WithObserver(renderer))
	}

	mgr, err := sc.Build(managerOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build simulation", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	err = mgr.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "simulation error", err)
	}

	if jnl != nil {
		if endErr := jnl.EndRun(context.Background()); endErr != nil {
			slog.Error("error closing journal run", "error", endErr)
		}
	}

	// Final state, drawn once more so the last frame reflects the halt.
	if renderer != nil {
		renderer.Render(mgr.Snapshot())
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Simulation terminated.")
	return nil
}

func loadScenario(path string) (*scenario.Scenario, error) {
	if path == "" {
		return scenario.Default(), nil
	}
	return scenario.Load(path)
}
