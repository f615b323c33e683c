package streak

import (
	"time"

	"github.com/limbo/habitstreak/pkg/entity"
)

// Engine holds no state besides an optional tracer, the zero value is ready
// to use and copies are safe to share between goroutines as long as the
// tracer is.
type Engine struct {
	tracer Tracer
}

// Option configures an Engine built by New.
type Option func(*Engine)

// WithTracer makes the engine report every decision it takes to t.
func WithTracer(t Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// New returns an Engine with opts applied.
func New(opts ...Option) Engine {
	var e Engine
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Result of one recalculation. FreezeDaysUsed is what this call charged and
// what the caller has to take off the user's balance; FreezeAppliedDates is
// the full history merged with the dates protected now.
type Result struct {
	NewStreak                 int
	DiamondsEarned            int
	FreezeDaysUsed            int
	GraceUsed                 bool
	GapStartDate              *time.Time
	TotalFreezeDaysUsedForGap int
	FreezeAppliedDates        []time.Time
}

// Apply returns the state to persist for the habit.
func (r Result) Apply(prev entity.StreakState) entity.StreakState {
	return entity.StreakState{
		Streak:                      r.NewStreak,
		HighestStreakAchieved:       max(prev.HighestStreakAchieved, r.NewStreak),
		CurrentGapStartDate:         r.GapStartDate,
		FreezeDaysUsedForCurrentGap: r.TotalFreezeDaysUsedForGap,
		FreezeAppliedDates:          r.FreezeAppliedDates,
	}
}

// Calculate rebuilds the streak of a habit as of today. state is the habit's
// persisted streak state, checks its whole history in any order and
// availableFreezeDays the user's current freeze balance.
func (e Engine) Calculate(state entity.StreakState, checks []entity.HabitCheck, today time.Time, availableFreezeDays int) Result {
	history := mergeDates(state.FreezeAppliedDates)
	days := sortedDays(checks)
	if len(days) == 0 {
		return Result{FreezeAppliedDates: history}
	}
	today = DateOf(today)
	current := e.currentStreak(days)
	last := days[len(days)-1]
	sinceLast := DaysBetween(last, today)

	switch {
	case sinceLast <= 0:
		// Checks dated after today are counted as today's.
		return Result{
			NewStreak:          current,
			DiamondsEarned:     e.diamonds(state.HighestStreakAchieved, current),
			FreezeAppliedDates: history,
		}
	case sinceLast == 1:
		// Today is still open.
		return Result{
			NewStreak:          current,
			FreezeAppliedDates: history,
		}
	}

	missed := sinceLast - 1
	gapStart := AddDays(last, 1)
	e.trace(EventGapDetected, gapStart, missed)
	e.trace(EventGraceApplied, gapStart, 1)

	alreadyUsed := 0
	if state.CurrentGapStartDate != nil && DaysBetween(*state.CurrentGapStartDate, gapStart) == 0 {
		alreadyUsed = max(state.FreezeDaysUsedForCurrentGap, 0)
	}
	needed := max(missed-1, 0)
	used := min(max(needed-alreadyUsed, 0), max(availableFreezeDays, 0))
	totalUsed := alreadyUsed + used
	unprotected := max(needed-totalUsed, 0)

	newStreak := current - unprotected
	if newStreak < 0 {
		e.trace(EventStreakFloored, today, newStreak)
		newStreak = 0
	}

	protected := protectedDates(gapStart, today, checks, totalUsed)
	if used > 0 {
		e.trace(EventFreezeApplied, gapStart, used)
	}

	return Result{
		NewStreak:                 newStreak,
		FreezeDaysUsed:            used,
		GraceUsed:                 true,
		GapStartDate:              &gapStart,
		TotalFreezeDaysUsedForGap: totalUsed,
		FreezeAppliedDates:        mergeDates(history, protected),
	}
}

// protectedDates walks the missed days of the open gap: the first one is the
// grace day, the next n carry a freeze.
func protectedDates(gapStart, today time.Time, checks []entity.HabitCheck, n int) []time.Time {
	done := daySet(checks)
	protected := make([]time.Time, 0, n)
	graceSeen := false
	for d := gapStart; d.Before(today) && len(protected) < n; d = d.AddDate(0, 0, 1) {
		if _, ok := done[epochDay(d)]; ok {
			continue
		}
		if !graceSeen {
			graceSeen = true
			continue
		}
		protected = append(protected, d)
	}
	return protected
}

// CurrentStreak is the streak as it stood on the day of the latest check.
func CurrentStreak(checks []entity.HabitCheck) int {
	return Engine{}.currentStreak(sortedDays(checks))
}

func (e Engine) currentStreak(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}
	streak := 0
	expected := days[0]
	for _, day := range days {
		gap := DaysBetween(expected, day)
		switch {
		case gap == 0:
			streak++
			expected = AddDays(expected, 1)
		case gap > 0:
			streak -= max(gap-1, 0)
			if streak < 0 {
				e.trace(EventStreakFloored, day, streak)
				streak = 0
			}
			streak++
			expected = AddDays(day, 1)
		}
	}
	return streak
}

func (e Engine) trace(kind EventKind, date time.Time, value int) {
	if e.tracer == nil {
		return
	}
	e.tracer.Trace(Event{Kind: kind, Date: date, Value: value})
}
