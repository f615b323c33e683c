package cli

import (
	"fmt"
	"strconv"

	"github.com/limbo/habitstreak/internal/streak"
	"github.com/spf13/cobra"
)

type DiamondsResult struct {
	PreviousHighest int `json:"previous_highest"`
	Streak          int `json:"streak"`
	Diamonds        int `json:"diamonds"`
}

func NewDiamondsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diamonds <previous-highest> <streak>",
		Short: "Show the milestone payout for reaching streak",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("previous-highest must be an integer: %w", err)
			}
			cur, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("streak must be an integer: %w", err)
			}
			res := DiamondsResult{PreviousHighest: prev, Streak: cur, Diamonds: streak.Diamonds(prev, cur)}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d diamonds for %d -> %d\n", res.Diamonds, prev, cur)
			return nil
		},
	}
}
