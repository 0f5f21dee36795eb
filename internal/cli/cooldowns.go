package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/mechanics/internal/cooldown"
)

// CooldownsOptions holds flags for the cooldowns command.
type CooldownsOptions struct {
	*RootOptions
	Database string
	Actor    string
	All      bool
}

// CooldownRow is one persisted cooldown.
type CooldownRow struct {
	Key              string `json:"key"`
	ExpiresAt        string `json:"expires_at"`
	RemainingSeconds int64  `json:"remaining_seconds"`
}

// NewCooldownsCommand creates the cooldowns command.
func NewCooldownsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CooldownsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cooldowns",
		Short: "Show persisted cooldowns",
		Long: `List the cooldown snapshot saved by the last engine shutdown.

Keys have the form actor:item:TRIGGER. Entries that have expired since
the snapshot was taken are hidden unless --all is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCooldowns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default MECHANICS_DB)")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "only cooldowns of this actor id")
	cmd.Flags().BoolVar(&opts.All, "all", false, "include expired entries")

	return cmd
}

func runCooldowns(opts *CooldownsOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openExistingStore(dbPath(opts.RootOptions, opts.Database))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	entries, err := st.LoadCooldowns(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	// A throwaway registry answers remaining time with the engine's
	// rounding.
	reg := cooldown.New(cooldown.WithStatusTTL(0))
	reg.Restore(entries)

	rows := []CooldownRow{}
	for _, e := range entries {
		if opts.Actor != "" && !strings.HasPrefix(e.Key, opts.Actor+":") {
			continue
		}
		remaining := reg.Remaining(e.Key)
		if remaining == 0 && !opts.All {
			continue
		}
		rows = append(rows, CooldownRow{
			Key:              e.Key,
			ExpiresAt:        time.UnixMilli(e.ExpiresAtMillis).UTC().Format(time.RFC3339),
			RemainingSeconds: remaining,
		})
	}

	if f.JSON() {
		return f.Success(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(f.Writer, "No active cooldowns.")
		return nil
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tEXPIRES\tREMAINING")
	for _, r := range rows {
		remaining := "expired"
		if r.RemainingSeconds > 0 {
			remaining = fmt.Sprintf("%ds", r.RemainingSeconds)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Key, r.ExpiresAt, remaining)
	}
	return tw.Flush()
}
