package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/mechanics/internal/ir"
	"github.com/roach88/mechanics/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Actor    string
	Item     string
	Trigger  string
	After    int64
	Limit    int
}

// TraceResult holds the trace output.
type TraceResult struct {
	Firings []ir.Firing `json:"firings"`
	Stats   TraceStats  `json:"stats"`
}

// TraceStats summarizes the selected firings.
type TraceStats struct {
	Total     int            `json:"total"`
	Executed  int            `json:"executed"`
	Consumed  int            `json:"consumed"`
	LastSeq   int64          `json:"last_seq"`
	ByTrigger map[string]int `json:"by_trigger"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled firings",
		Long: `List firings from the journal in seq order.

Every invocation that reached the action stage is journaled with the
actions it dispatched and the definition version that ran. Filters
combine; --after resumes from a seq returned by an earlier call.

Examples:
  mechanics trace --db ./mechanics.db
  mechanics trace --db ./mechanics.db --actor 3f2a... --trigger right_click
  mechanics trace --db ./mechanics.db --after 120 --limit 50 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default MECHANICS_DB)")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "only firings of this actor id")
	cmd.Flags().StringVar(&opts.Item, "item", "", "only firings of this item id")
	cmd.Flags().StringVar(&opts.Trigger, "trigger", "", "only firings of this trigger (config key)")
	cmd.Flags().Int64Var(&opts.After, "after", 0, "only firings with seq greater than this")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of firings (0 = all)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	filter := store.Filter{
		ActorID:  opts.Actor,
		ItemID:   opts.Item,
		AfterSeq: opts.After,
		Limit:    opts.Limit,
	}
	if opts.Trigger != "" {
		trigger, ok := ir.LookupTrigger(opts.Trigger)
		if !ok {
			return f.Fail(ExitCommandError, ErrCodeInvalidInput, fmt.Sprintf("unknown trigger %q", opts.Trigger), nil)
		}
		filter.Trigger = trigger
	}
	if opts.Limit < 0 {
		return f.Fail(ExitCommandError, ErrCodeInvalidInput, "--limit must not be negative", nil)
	}

	st, err := openExistingStore(dbPath(opts.RootOptions, opts.Database))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	firings, err := st.ReadFirings(ctx, filter)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := TraceResult{Firings: firings, Stats: summarize(firings)}
	if f.JSON() {
		return f.Success(result)
	}

	w := f.Writer
	if len(firings) == 0 {
		fmt.Fprintln(w, "No firings found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tTIME\tACTOR\tITEM\tTRIGGER\tACTIONS\tRESULT")
	for _, fr := range firings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			fr.Seq,
			time.UnixMilli(fr.AtMillis).UTC().Format(time.RFC3339),
			fr.ActorID,
			fr.ItemID,
			fr.Trigger,
			dash(strings.Join(fr.Actions, ",")),
			firingResult(fr),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d firing(s), %d executed, %d consumed, last seq %d\n",
		result.Stats.Total, result.Stats.Executed, result.Stats.Consumed, result.Stats.LastSeq)
	triggers := make([]string, 0, len(result.Stats.ByTrigger))
	for t := range result.Stats.ByTrigger {
		triggers = append(triggers, t)
	}
	sort.Strings(triggers)
	for _, t := range triggers {
		fmt.Fprintf(w, "  %s: %d\n", t, result.Stats.ByTrigger[t])
	}
	return nil
}

func summarize(firings []ir.Firing) TraceStats {
	s := TraceStats{Total: len(firings), ByTrigger: make(map[string]int)}
	for _, fr := range firings {
		if fr.Executed {
			s.Executed++
		}
		if fr.Consumed {
			s.Consumed++
		}
		if fr.Seq > s.LastSeq {
			s.LastSeq = fr.Seq
		}
		s.ByTrigger[string(fr.Trigger)]++
	}
	return s
}

// firingResult renders the counters of a firing compactly.
func firingResult(fr ir.Firing) string {
	var parts []string
	if !fr.Executed {
		parts = append(parts, "nothing ran")
	}
	if fr.Scheduled > 0 {
		parts = append(parts, fmt.Sprintf("%d scheduled", fr.Scheduled))
	}
	if fr.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", fr.Skipped))
	}
	if fr.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", fr.Failed))
	}
	if fr.Consumed {
		parts = append(parts, "consumed")
	}
	if len(parts) == 0 {
		return "ok"
	}
	return strings.Join(parts, ", ")
}

// openExistingStore opens a database that must already exist. Opening a
// missing path would otherwise create an empty journal.
func openExistingStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("no database: pass --db or set MECHANICS_DB")
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("database not found: %s", path)
	}
	return store.Open(path)
}
