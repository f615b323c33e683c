package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/limbo/habitstreak/internal/streak"
)

// TraceEvent is an engine event as printed by --trace.
type TraceEvent struct {
	Kind  string `json:"kind"`
	Date  string `json:"date,omitempty"`
	Value int    `json:"value"`
}

type eventRecorder struct {
	events []TraceEvent
}

func (r *eventRecorder) Trace(ev streak.Event) {
	te := TraceEvent{Kind: string(ev.Kind), Value: ev.Value}
	if !ev.Date.IsZero() {
		te.Date = ev.Date.Format(time.DateOnly)
	}
	r.events = append(r.events, te)
}

func writeJSON(w io.Writer, v any) error {
	out, err := sonic.ConfigDefault.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func writeEvents(w io.Writer, events []TraceEvent) {
	for _, ev := range events {
		if ev.Date != "" {
			fmt.Fprintf(w, "  %-18s %s  %d\n", ev.Kind, ev.Date, ev.Value)
			continue
		}
		fmt.Fprintf(w, "  %-18s %-10s  %d\n", ev.Kind, "-", ev.Value)
	}
}

func formatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(time.DateOnly))
	}
	return out
}
