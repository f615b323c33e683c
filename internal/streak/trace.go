package streak

import "time"

type EventKind string

const (
	EventGapDetected   EventKind = "gap_detected"
	EventGraceApplied  EventKind = "grace_applied"
	EventFreezeApplied EventKind = "freeze_applied"
	EventStreakFloored EventKind = "streak_floored"
	EventMilestone     EventKind = "milestone_reached"
)

// Event describes one decision the engine took. Value depends on Kind:
// missed days for a gap, freeze days charged by this call, the streak before
// flooring, or the streak day of a milestone.
type Event struct {
	Kind  EventKind
	Date  time.Time
	Value int
}

type Tracer interface {
	Trace(ev Event)
}

type TracerFunc func(ev Event)

func (f TracerFunc) Trace(ev Event) {
	f(ev)
}
