// Package cli implements streakctl, an offline runner for the streak engine.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "text" | "json"
	Trace  bool
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "streakctl",
		Short: "Run the habit streak engine on local scenarios",
		Long: `streakctl evaluates habit streak scenarios without a database.

A scenario file describes the persisted streak state of one habit, its
completion dates, the user's freeze balance and the date to evaluate on.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().BoolVar(&opts.Trace, "trace", false, "print engine decisions")

	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewCalendarCommand(opts))
	cmd.AddCommand(NewDiamondsCommand(opts))

	return cmd
}
