package streak

import (
	"slices"
	"time"

	"github.com/limbo/habitstreak/pkg/entity"
)

const secondsPerDay = 24 * 60 * 60

// DateOf drops the clock part of t. The calendar date is read in t's own
// location and returned as UTC midnight, which is how DATE columns come back
// from postgres.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b (negative if b
// is before a).
func DaysBetween(a, b time.Time) int {
	return int(epochDay(b) - epochDay(a))
}

func AddDays(t time.Time, n int) time.Time {
	return DateOf(t).AddDate(0, 0, n)
}

func epochDay(t time.Time) int64 {
	return DateOf(t).Unix() / secondsPerDay
}

// sortedDays returns the distinct check dates, oldest first.
func sortedDays(checks []entity.HabitCheck) []time.Time {
	days := make([]time.Time, 0, len(checks))
	seen := make(map[int64]struct{}, len(checks))
	for _, c := range checks {
		key := epochDay(c.CheckDate)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, DateOf(c.CheckDate))
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	return days
}

func daySet(checks []entity.HabitCheck) map[int64]struct{} {
	set := make(map[int64]struct{}, len(checks))
	for _, c := range checks {
		set[epochDay(c.CheckDate)] = struct{}{}
	}
	return set
}

// mergeDates unions date lists into a sorted list without duplicates.
func mergeDates(lists ...[]time.Time) []time.Time {
	seen := make(map[int64]struct{})
	merged := make([]time.Time, 0)
	for _, list := range lists {
		for _, d := range list {
			key := epochDay(d)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, DateOf(d))
		}
	}
	slices.SortFunc(merged, func(a, b time.Time) int { return a.Compare(b) })
	return merged
}
