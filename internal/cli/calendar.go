package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/limbo/habitstreak/internal/streak"
	"github.com/spf13/cobra"
)

type CalendarOptions struct {
	From string
	To   string
}

type CalendarEntry struct {
	Date string `json:"date"`
	Kind string `json:"kind"`
}

func NewCalendarCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CalendarOptions{}
	cmd := &cobra.Command{
		Use:   "calendar <scenario.yaml>",
		Short: "Classify each day of a range as completed, grace, freeze or missed",
		Long: `Classify each day of a range for the scenario's habit.

The range defaults to the 30 days ending on the scenario's today. The
scenario's stored freeze dates are used as they are: run simulate first
and copy its frozen dates into the state to see freshly charged days.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := LoadScenario(args[0])
			if err != nil {
				return err
			}
			entries, err := BuildCalendar(sc, opts.From, opts.To)
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", e.Date, e.Kind)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.From, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.To, "to", "", "last day, YYYY-MM-DD")
	return cmd
}

func BuildCalendar(sc *Scenario, from, to string) ([]CalendarEntry, error) {
	today := streak.DateOf(sc.Today.Time)
	end := today
	if to != "" {
		t, err := time.Parse(time.DateOnly, to)
		if err != nil {
			return nil, fmt.Errorf("invalid --to: %w", err)
		}
		end = t
	}
	start := streak.AddDays(end, -29)
	if from != "" {
		t, err := time.Parse(time.DateOnly, from)
		if err != nil {
			return nil, fmt.Errorf("invalid --from: %w", err)
		}
		start = t
	}
	if start.After(end) {
		return nil, errors.New("--from is after --to")
	}
	days := streak.Calendar(sc.StreakState(), sc.Checks(), start, end, today)
	entries := make([]CalendarEntry, 0, len(days))
	for _, d := range days {
		entries = append(entries, CalendarEntry{Date: d.Date.Format(time.DateOnly), Kind: d.Kind})
	}
	return entries, nil
}
