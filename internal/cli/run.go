package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/mechanics/internal/condition"
	"github.com/roach88/mechanics/internal/cooldown"
	"github.com/roach88/mechanics/internal/engine"
	"github.com/roach88/mechanics/internal/host"
	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/journal"
	"github.com/roach88/mechanics/internal/mechanic"
	"github.com/roach88/mechanics/internal/messages"
	"github.com/roach88/mechanics/internal/scheduler"
	"github.com/roach88/mechanics/internal/store"
)

// maintenanceTicks is how often the running engine sweeps expired
// cooldowns and condition cache entries and logs its stats.
const maintenanceTicks = 60 * host.TicksPerSecond

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Duration time.Duration
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [items-path]",
		Short: "Run the engine against the tick scheduler",
		Long: `Load item definitions and run the engine until interrupted.

The database is created if missing. On start the logical clock resumes
after the highest journaled seq and the saved cooldown snapshot is
restored; on shutdown cooldowns are saved and the journal is drained.

Example:
  mechanics run --db ./mechanics.db ./items
  mechanics run --db /tmp/test.db items.yaml --duration 30s --verbose`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts, itemsPath(rootOpts, args), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default MECHANICS_DB)")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 0, "stop after this long (0 = until interrupted)")

	return cmd
}

func runEngine(opts *RunOptions, path string, cmd *cobra.Command) error {
	cfg := opts.Config
	db := dbPath(opts.RootOptions, opts.Database)
	if db == "" {
		return NewExitError(ExitCommandError, "no database: pass --db or set MECHANICS_DB")
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	evaluator := condition.New(condition.WithCacheTTL(cfg.ConditionTTL))

	slog.Info("loading items", "path", path)
	set, err := loadItems(path, evaluator)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load items", err)
	}
	for file, ferr := range set.FileErr {
		slog.Error("item file skipped", "file", file, "error", ferr)
	}
	for _, le := range set.Errors {
		slog.Warn("item problem", "code", le.Code, "item", le.Item, "path", le.Path, "message", le.Message)
	}
	registry := mechanic.NewRegistry()
	if set.register(registry) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no usable item definitions in %s", path))
	}

	catalog := messages.Default()
	if cfg.MessagesPath != "" {
		if catalog, err = messages.Load(cfg.MessagesPath); err != nil {
			return WrapExitError(ExitCommandError, "failed to load messages", err)
		}
	}

	slog.Info("opening database", "path", db)
	st, err := store.Open(db)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	maxSeq, err := st.MaxSeq(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	if err := recordDefinitions(ctx, st, registry, maxSeq); err != nil {
		return WrapExitError(ExitCommandError, "failed to record definitions", err)
	}

	cooldowns := cooldown.New(
		cooldown.WithSweepInterval(cfg.CooldownSweep),
		cooldown.WithHealthLimit(cfg.CooldownLimit),
	)
	saved, err := st.LoadCooldowns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load cooldowns", err)
	}
	restored := cooldowns.Restore(saved)

	sched := scheduler.New()
	j := journal.New(st)
	eng := engine.New(registry, sched,
		engine.WithSeqClock(engine.NewSeqClockAt(maxSeq)),
		engine.WithIDGenerator(engine.UUIDv7Generator{}),
		engine.WithCooldowns(cooldowns),
		engine.WithEvaluator(evaluator),
		engine.WithMessages(catalog),
		engine.WithJournal(j),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Close or cancellation ends Run; either way the backlog is written.
		if err := j.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			slog.Error("journal stopped", "error", err)
		}
	}()

	sched.ScheduleRepeating(maintenanceTicks, maintenanceTicks, func() {
		expired := eng.Cooldowns().Sweep()
		evicted := eng.Conditions().Sweep()
		stats := eng.Stats()
		slog.Debug("maintenance",
			"expired_cooldowns", expired,
			"evicted_conditions", evicted,
			"invocations", stats.Invocations,
			"monitor_tasks", stats.MonitorTasks,
		)
		if !stats.Healthy {
			slog.Warn("cooldown registry above health limit", "active", stats.ActiveCooldowns, "limit", cfg.CooldownLimit)
		}
	})

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

	slog.Info("engine starting",
		"items", registry.Len(),
		"resume_seq", maxSeq,
		"cooldowns_restored", restored,
		"tick", cfg.Tick,
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Engine started with %d item(s). Press Ctrl-C to stop.\n", registry.Len())

	runCtx := ctx
	if opts.Duration > 0 {
		var stop context.CancelFunc
		runCtx, stop = context.WithTimeout(ctx, opts.Duration)
		defer stop()
	}
	runErr := sched.Run(runCtx, cfg.Tick)

	eng.Shutdown()
	sched.CancelAll()
	j.Close()
	wg.Wait()

	saveCtx := context.WithoutCancel(ctx)
	snapshot := eng.Cooldowns().Snapshot()
	if err := st.SaveCooldowns(saveCtx, snapshot); err != nil {
		return WrapExitError(ExitFailure, "failed to save cooldowns", err)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "scheduler error", runErr)
	}
	slog.Info("engine stopped gracefully",
		"journaled", j.Written(),
		"dropped", j.Dropped(),
		"cooldowns_saved", len(snapshot),
	)
	return nil
}

// recordDefinitions stores the canonical body of every registered
// definition so journaled hashes can be resolved later.
func recordDefinitions(ctx context.Context, st *store.Store, reg *mechanic.Registry, seq int64) error {
	for _, id := range reg.IDs() {
		def, _ := reg.Lookup(id)
		body, err := ir.CanonicalDefinition(def.Item)
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		if err := st.WriteDefinition(ctx, store.DefinitionRecord{
			Hash:     def.Hash,
			ItemID:   id,
			Body:     string(body),
			FirstSeq: seq + 1,
		}); err != nil {
			return err
		}
	}
	return nil
}
