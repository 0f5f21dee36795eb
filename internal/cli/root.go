package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/mechanics/internal/config"
)

// RootOptions holds global flags and the environment configuration.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
	Config  config.Config
}

// ValidFormats lists the accepted --format values.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the mechanics command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mechanics",
		Short: "Item mechanics rule engine",
		Long: `Operator tooling for trigger/condition/action item mechanics.

Validates item definition files, lists the trigger taxonomy, runs
conformance scenarios, and inspects the firing journal and persisted
cooldowns. Settings come from MECHANICS_* environment variables; flags
override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			opts.Config = cfg
			setupLogging(cmd.ErrOrStderr(), cfg, opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTriggersCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewCooldownsCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

// setupLogging installs the default slog handler. --verbose forces debug.
func setupLogging(w io.Writer, cfg config.Config, verbose bool) {
	level, _ := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// itemsPath returns the positional path if given, else the configured one.
func itemsPath(opts *RootOptions, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return opts.Config.ItemsPath
}

// dbPath returns the --db flag if set, else MECHANICS_DB.
func dbPath(opts *RootOptions, flag string) string {
	if flag != "" {
		return flag
	}
	return opts.Config.DBPath
}
