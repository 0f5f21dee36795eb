package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/mechanics/internal/ir"
)

// TriggerRow is one line of the triggers listing.
type TriggerRow struct {
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	RequiresInHand bool     `json:"requires_in_hand"`
	Periodic       bool     `json:"periodic"`
	Items          []string `json:"items,omitempty"`
}

// TriggersOptions holds flags for the triggers command.
type TriggersOptions struct {
	*RootOptions
	Used bool
}

// NewTriggersCommand creates the triggers command.
func NewTriggersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TriggersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "triggers [items-path]",
		Short: "List trigger kinds",
		Long: `List every trigger kind with its config key and display name.

With an items path, each trigger also lists the items that declare it;
--used hides triggers no item declares.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runTriggers(opts, path, cmd)
		},
	}
	cmd.Flags().BoolVar(&opts.Used, "used", false, "only list triggers declared by an item (needs items-path)")
	return cmd
}

func runTriggers(opts *TriggersOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Used && path == "" {
		return f.Fail(ExitCommandError, ErrCodeInvalidInput, "--used requires an items path", nil)
	}

	users := make(map[ir.TriggerKind][]string)
	if path != "" {
		set, err := loadItems(path, nil)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
		}
		for _, def := range set.Defs {
			for _, info := range ir.Triggers() {
				if def.HasTrigger(info.Kind) {
					users[info.Kind] = append(users[info.Kind], def.ID())
				}
			}
		}
	}

	title := cases.Title(language.English)
	rows := []TriggerRow{}
	for _, info := range ir.Triggers() {
		if opts.Used && len(users[info.Kind]) == 0 {
			continue
		}
		rows = append(rows, TriggerRow{
			Key:            info.Kind.ConfigKey(),
			Name:           info.Kind.Name(),
			DisplayName:    title.String(info.DisplayName),
			RequiresInHand: info.RequiresInHand,
			Periodic:       info.Periodic,
			Items:          users[info.Kind],
		})
	}

	if f.JSON() {
		return f.Success(rows)
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tDISPLAY NAME\tFLAGS\tITEMS")
	for _, r := range rows {
		var flags []string
		if r.RequiresInHand {
			flags = append(flags, "in-hand")
		}
		if r.Periodic {
			flags = append(flags, "periodic")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Key, r.DisplayName, dash(strings.Join(flags, ",")), dash(strings.Join(r.Items, ",")))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
