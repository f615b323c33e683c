package streak_test

import (
	"testing"
	"time"

	"github.com/limbo/habitstreak/internal/streak"
	"github.com/limbo/habitstreak/pkg/entity"
	"github.com/stretchr/testify/assert"
)

func TestIsGraceDay(t *testing.T) {
	t.Parallel()
	checks := checksOn("2025-03-01", "2025-03-02")
	today := day("2025-03-06")
	testCases := []struct {
		Desc          string
		LastCompleted *time.Time
		Date          time.Time
		Result        bool
	}{
		{Desc: "day after last check", LastCompleted: datePtr("2025-03-02"), Date: day("2025-03-03"), Result: true},
		{Desc: "second missed day", LastCompleted: datePtr("2025-03-02"), Date: day("2025-03-04"), Result: false},
		{Desc: "no checks yet", LastCompleted: nil, Date: day("2025-03-03"), Result: false},
		{Desc: "checked day", LastCompleted: datePtr("2025-03-01"), Date: day("2025-03-02"), Result: false},
		{Desc: "today is not a grace day yet", LastCompleted: datePtr("2025-03-05"), Date: today, Result: false},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			assert.Equal(t, tc.Result, streak.IsGraceDay(tc.LastCompleted, tc.Date, today, checks))
		})
	}
}

func TestIsFreezeDay(t *testing.T) {
	t.Parallel()
	state := entity.StreakState{
		FreezeAppliedDates: []time.Time{day("2025-03-04"), day("2025-03-05"), day("2025-03-07")},
	}
	checks := checksOn("2025-03-01", "2025-03-02", "2025-03-05")
	today := day("2025-03-07")
	testCases := []struct {
		Desc   string
		Date   time.Time
		Result bool
	}{
		{Desc: "stored freeze date", Date: day("2025-03-04"), Result: true},
		{Desc: "missed day without freeze", Date: day("2025-03-03"), Result: false},
		{Desc: "freeze date checked later", Date: day("2025-03-05"), Result: false},
		{Desc: "today never counts", Date: day("2025-03-07"), Result: false},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			assert.Equal(t, tc.Result, streak.IsFreezeDay(state, tc.Date, today, checks))
		})
	}
}

func TestCalendar(t *testing.T) {
	t.Parallel()
	state := entity.StreakState{FreezeAppliedDates: []time.Time{day("2025-03-06")}}
	checks := checksOn("2025-03-02", "2025-03-03", "2025-03-08")
	days := streak.Calendar(state, checks, day("2025-03-01"), day("2025-03-11"), day("2025-03-10"))
	kinds := make([]streak.DayKind, 0, len(days))
	for _, d := range days {
		kinds = append(kinds, streak.DayKind(d.Kind))
	}
	assert.Equal(t, []streak.DayKind{
		streak.DayInactive,  // 01
		streak.DayCompleted, // 02
		streak.DayCompleted, // 03
		streak.DayGrace,     // 04
		streak.DayMissed,    // 05
		streak.DayFreeze,    // 06
		streak.DayMissed,    // 07
		streak.DayCompleted, // 08
		streak.DayGrace,     // 09
		streak.DayToday,     // 10
		streak.DayFuture,    // 11
	}, kinds)
	assert.Equal(t, day("2025-03-01"), days[0].Date)

	assert.Nil(t, streak.Calendar(state, checks, day("2025-03-05"), day("2025-03-01"), day("2025-03-10")))
}
