package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Name         string
	PasswordHash string
}

// StreakState is the part of a habit the streak engine reads and rewrites.
// Dates are calendar days stored as UTC midnight.
type StreakState struct {
	Streak                      int         `json:"streak"`
	HighestStreakAchieved       int         `json:"highest_streak"`
	CurrentGapStartDate         *time.Time  `json:"current_gap_start,omitempty"`
	FreezeDaysUsedForCurrentGap int         `json:"freeze_days_used_for_gap"`
	FreezeAppliedDates          []time.Time `json:"freeze_applied_dates"`
}

type Habit struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"uid"`
	Title       string    `json:"title"`
	Description string    `json:"desc"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	StreakState
	LastStreakUpdate *time.Time `json:"last_streak_update,omitempty"`
	// StreakVersion grows with every saved recalculation.
	StreakVersion int `json:"-"`
}

// HabitCheck is a completion record: at most one per habit per day.
type HabitCheck struct {
	ID        int       `json:"id"`
	HabitID   uuid.UUID `json:"habit_id"`
	CheckDate time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

type HabitStats struct {
	ID            uuid.UUID  `json:"habit_id"`
	TotalChecks   int        `json:"total_checks"`
	CurrentStreak int        `json:"current_streak"`
	MaxStreak     int        `json:"max_streak"`
	LastCheck     *time.Time `json:"last_check,omitempty"`
}

type UserRewards struct {
	UserID     uuid.UUID `json:"uid"`
	Diamonds   int       `json:"diamonds"`
	FreezeDays int       `json:"freeze_days"`
}

// StreakOutcome is everything that has to be written in one transaction
// after a recalculation.
type StreakOutcome struct {
	HabitID        uuid.UUID
	UserID         uuid.UUID
	State          StreakState
	CalculatedOn   time.Time
	DiamondsEarned int
	FreezeDaysUsed int
	// Version is the habit's StreakVersion the state was computed from.
	Version int
}

type StreakReport struct {
	HabitID              uuid.UUID  `json:"habit_id"`
	Streak               int        `json:"streak"`
	HighestStreak        int        `json:"highest_streak"`
	DiamondsEarned       int        `json:"diamonds_earned"`
	FreezeDaysUsed       int        `json:"freeze_days_used"`
	GraceUsed            bool       `json:"grace_used"`
	GapStartDate         *time.Time `json:"gap_start,omitempty"`
	FreezeDaysUsedForGap int        `json:"freeze_days_used_for_gap"`
	CalculatedOn         time.Time  `json:"calculated_on"`
}

type CalendarDay struct {
	Date time.Time `json:"date"`
	Kind string    `json:"kind"`
}
