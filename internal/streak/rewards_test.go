package streak_test

import (
	"testing"

	"github.com/limbo/habitstreak/internal/streak"
	"github.com/stretchr/testify/assert"
)

func TestDiamonds(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		Desc     string
		Previous int
		Current  int
		Result   int
	}{
		{Desc: "first milestone", Previous: 0, Current: 10, Result: 20},
		{Desc: "below first milestone", Previous: 0, Current: 9, Result: 0},
		{Desc: "hundredth day from 95", Previous: 95, Current: 100, Result: 120},
		{Desc: "all milestones up to 100", Previous: 0, Current: 100, Result: 300},
		{Desc: "two hundredth day", Previous: 190, Current: 200, Result: 220},
		{Desc: "equal to previous highest", Previous: 10, Current: 10, Result: 0},
		{Desc: "below previous highest", Previous: 25, Current: 20, Result: 0},
		{Desc: "milestone already paid", Previous: 10, Current: 19, Result: 0},
		{Desc: "negative previous highest", Previous: -5, Current: 10, Result: 20},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			assert.Equal(t, tc.Result, streak.Diamonds(tc.Previous, tc.Current))
		})
	}
}
