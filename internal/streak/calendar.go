package streak

import (
	"time"

	"github.com/limbo/habitstreak/pkg/entity"
)

type DayKind string

const (
	DayInactive  DayKind = "inactive"
	DayCompleted DayKind = "completed"
	DayGrace     DayKind = "grace"
	DayFreeze    DayKind = "freeze"
	DayMissed    DayKind = "missed"
	DayToday     DayKind = "today"
	DayFuture    DayKind = "future"
)

// IsGraceDay reports whether date is the unchecked day right after
// lastCompleted. Only past days qualify.
func IsGraceDay(lastCompleted *time.Time, date, today time.Time, checks []entity.HabitCheck) bool {
	if lastCompleted == nil || DaysBetween(date, today) <= 0 {
		return false
	}
	if _, ok := daySet(checks)[epochDay(date)]; ok {
		return false
	}
	return DaysBetween(*lastCompleted, date) == 1
}

// IsFreezeDay trusts the stored freeze dates only; it does not try to work
// out from the current balance which days would have been protected.
func IsFreezeDay(state entity.StreakState, date, today time.Time, checks []entity.HabitCheck) bool {
	if DaysBetween(date, today) <= 0 {
		return false
	}
	if _, ok := daySet(checks)[epochDay(date)]; ok {
		return false
	}
	key := epochDay(date)
	for _, d := range state.FreezeAppliedDates {
		if epochDay(d) == key {
			return true
		}
	}
	return false
}

// Calendar classifies every day in [from, to]. A grace day is the first
// unchecked day after any check, not only after the latest one.
func Calendar(state entity.StreakState, checks []entity.HabitCheck, from, to, today time.Time) []entity.CalendarDay {
	from, to, today = DateOf(from), DateOf(to), DateOf(today)
	if to.Before(from) {
		return nil
	}
	days := sortedDays(checks)
	done := daySet(checks)
	frozen := make(map[int64]struct{}, len(state.FreezeAppliedDates))
	for _, d := range state.FreezeAppliedDates {
		frozen[epochDay(d)] = struct{}{}
	}

	result := make([]entity.CalendarDay, 0, DaysBetween(from, to)+1)
	var lastBefore *time.Time
	next := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		for next < len(days) && days[next].Before(d) {
			lastBefore = &days[next]
			next++
		}
		result = append(result, entity.CalendarDay{
			Date: d,
			Kind: string(classify(d, today, lastBefore, done, frozen)),
		})
	}
	return result
}

func classify(d, today time.Time, lastBefore *time.Time, done, frozen map[int64]struct{}) DayKind {
	key := epochDay(d)
	if _, ok := done[key]; ok {
		return DayCompleted
	}
	switch {
	case d.After(today):
		return DayFuture
	case d.Equal(today):
		return DayToday
	case lastBefore == nil:
		return DayInactive
	case DaysBetween(*lastBefore, d) == 1:
		return DayGrace
	}
	if _, ok := frozen[key]; ok {
		return DayFreeze
	}
	return DayMissed
}
