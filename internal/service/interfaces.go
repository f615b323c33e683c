package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/habitstreak/pkg/entity"
)

type RegisterRequest struct {
	Name     string `validate:"required,alphanum_underscore,min=3,max=100"`
	Password string `validate:"required,min=8,max=72"`
}

type CreateHabitRequest struct {
	Title       string `validate:"required,min=1,max=200"`
	Description string `validate:"max=1000"`
}

type PaginationOpts struct {
	Limit  int
	Offset int
}

type PurchaseFreezeDaysRequest struct {
	Days int `validate:"min=1,max=365"`
}

// RecalcSummary describes one pass of RecalculateAll.
type RecalcSummary struct {
	Processed      int
	Failed         int
	DiamondsEarned int
	FreezeDaysUsed int
}

type UserServiceI interface {
	// Validates user's credentials, creates new row in database. Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. If ok, give back user's data with ID.
	Login(ctx context.Context, name, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByName(ctx context.Context, name string) (*entity.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
}

type HabitsServiceI interface {
	CreateHabit(ctx context.Context, uid uuid.UUID, req CreateHabitRequest) (*entity.Habit, error)
	GetUserHabits(ctx context.Context, uid uuid.UUID, pagination PaginationOpts) ([]*entity.Habit, error)
	GetHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error)
	DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error
}

type HabitChecksServiceI interface {
	// Marks habit as done on date and recalculates its streak
	CheckHabit(ctx context.Context, habitID, userID uuid.UUID, date time.Time) (*entity.StreakReport, error)
	// Removes the mark of date and recalculates the streak
	UncheckHabit(ctx context.Context, habitID, userID uuid.UUID, date time.Time) (*entity.StreakReport, error)
	GetHabitChecks(ctx context.Context, habitID, userID uuid.UUID, from, to time.Time) ([]entity.HabitCheck, error)
	GetHabitStats(ctx context.Context, habitID, userID uuid.UUID) (*entity.HabitStats, error)
}

type StreakServiceI interface {
	// Rebuilds habit's streak as of today, charges freeze days and credits diamonds
	Recalculate(ctx context.Context, habitID, userID uuid.UUID) (*entity.StreakReport, error)
	// Recalculates every habit. Failures of single habits are counted, not returned
	RecalculateAll(ctx context.Context) (*RecalcSummary, error)
	// Classifies each day of [from, to] for display
	GetCalendar(ctx context.Context, habitID, userID uuid.UUID, from, to time.Time) ([]entity.CalendarDay, error)
	// Current calendar day in the service's timezone
	Today() time.Time
}

type RewardsServiceI interface {
	GetRewards(ctx context.Context, uid uuid.UUID) (*entity.UserRewards, error)
	PurchaseFreezeDays(ctx context.Context, uid uuid.UUID, req PurchaseFreezeDaysRequest) (*entity.UserRewards, error)
}
