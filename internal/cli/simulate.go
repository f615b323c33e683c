package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/limbo/habitstreak/internal/streak"
	"github.com/spf13/cobra"
)

type SimulationResult struct {
	Today                string       `json:"today"`
	HistoryStreak        int          `json:"history_streak"`
	NewStreak            int          `json:"new_streak"`
	HighestStreak        int          `json:"highest_streak"`
	DiamondsEarned       int          `json:"diamonds_earned"`
	FreezeDaysUsed       int          `json:"freeze_days_used"`
	FreezeDaysLeft       int          `json:"freeze_days_left"`
	GraceUsed            bool         `json:"grace_used"`
	GapStart             string       `json:"gap_start,omitempty"`
	FreezeDaysUsedForGap int          `json:"freeze_days_used_for_gap"`
	FreezeAppliedDates   []string     `json:"freeze_applied_dates"`
	Events               []TraceEvent `json:"events,omitempty"`
}

func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Recalculate a habit's streak as of the scenario's today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := LoadScenario(args[0])
			if err != nil {
				return err
			}
			res := Simulate(sc, rootOpts.Trace)
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			writeSimulation(cmd, res)
			return nil
		},
	}
}

// Simulate runs one recalculation over the scenario.
func Simulate(sc *Scenario, trace bool) SimulationResult {
	rec := &eventRecorder{}
	var opts []streak.Option
	if trace {
		opts = append(opts, streak.WithTracer(rec))
	}
	engine := streak.New(opts...)
	state := sc.StreakState()
	checks := sc.Checks()

	result := engine.Calculate(state, checks, sc.Today.Time, sc.FreezeDays)
	next := result.Apply(state)
	res := SimulationResult{
		Today:                sc.Today.String(),
		HistoryStreak:        streak.CurrentStreak(checks),
		NewStreak:            result.NewStreak,
		HighestStreak:        next.HighestStreakAchieved,
		DiamondsEarned:       result.DiamondsEarned,
		FreezeDaysUsed:       result.FreezeDaysUsed,
		FreezeDaysLeft:       max(sc.FreezeDays, 0) - result.FreezeDaysUsed,
		GraceUsed:            result.GraceUsed,
		FreezeDaysUsedForGap: result.TotalFreezeDaysUsedForGap,
		FreezeAppliedDates:   formatDates(result.FreezeAppliedDates),
		Events:               rec.events,
	}
	if result.GapStartDate != nil {
		res.GapStart = result.GapStartDate.Format(time.DateOnly)
	}
	return res
}

func writeSimulation(cmd *cobra.Command, res SimulationResult) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "today:             %s\n", res.Today)
	fmt.Fprintf(w, "streak:            %d (history %d, highest %d)\n", res.NewStreak, res.HistoryStreak, res.HighestStreak)
	fmt.Fprintf(w, "diamonds earned:   %d\n", res.DiamondsEarned)
	fmt.Fprintf(w, "freeze days used:  %d (left %d)\n", res.FreezeDaysUsed, res.FreezeDaysLeft)
	if res.GraceUsed {
		fmt.Fprintf(w, "open gap:          since %s, %d freeze day(s) charged\n", res.GapStart, res.FreezeDaysUsedForGap)
	}
	if len(res.FreezeAppliedDates) > 0 {
		fmt.Fprintf(w, "frozen dates:      %s\n", strings.Join(res.FreezeAppliedDates, ", "))
	}
	if len(res.Events) > 0 {
		fmt.Fprintln(w, "events:")
		writeEvents(w, res.Events)
	}
}
