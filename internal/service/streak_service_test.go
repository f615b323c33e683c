package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/habitstreak/internal/error_values"
	"github.com/limbo/habitstreak/internal/repository"
	repomocks "github.com/limbo/habitstreak/internal/repository/mocks"
	"github.com/limbo/habitstreak/internal/service"
	"github.com/limbo/habitstreak/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var streakToday = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

// checkRun returns n consecutive checks ending on last.
func checkRun(habitID uuid.UUID, last time.Time, n int) []entity.HabitCheck {
	checks := make([]entity.HabitCheck, 0, n)
	for i := n - 1; i >= 0; i-- {
		checks = append(checks, entity.HabitCheck{
			ID:        n - i,
			HabitID:   habitID,
			CheckDate: last.AddDate(0, 0, -i),
		})
	}
	return checks
}

type streakMocks struct {
	habits  *repomocks.MockHabitsRepositoryI
	checks  *repomocks.MockHabitChecksRepositoryI
	rewards *repomocks.MockRewardsRepositoryI
}

func newStreakService(t *testing.T, now time.Time, opts ...service.StreakOption) (*service.StreakService, streakMocks) {
	ctrl := gomock.NewController(t)
	m := streakMocks{
		habits:  repomocks.NewMockHabitsRepositoryI(ctrl),
		checks:  repomocks.NewMockHabitChecksRepositoryI(ctrl),
		rewards: repomocks.NewMockRewardsRepositoryI(ctrl),
	}
	opts = append([]service.StreakOption{service.WithClock(func() time.Time { return now })}, opts...)
	return service.NewStreakService(m.habits, m.checks, m.rewards, opts...), m
}

func TestRecalculate(t *testing.T) {
	habitID := uuid.New()
	userID := uuid.New()
	testCases := []struct {
		Desc         string
		State        entity.StreakState
		Checks       []entity.HabitCheck
		Balance      int
		Error        error
		Outcome      *entity.StreakOutcome
		Report       *entity.StreakReport
	}{
		{
			Desc:    "tenth day pays diamonds",
			Checks:  checkRun(habitID, streakToday, 10),
			Balance: 0,
			Outcome: &entity.StreakOutcome{
				HabitID:        habitID,
				UserID:         userID,
				State:          entity.StreakState{Streak: 10, HighestStreakAchieved: 10, FreezeAppliedDates: []time.Time{}},
				CalculatedOn:   streakToday,
				DiamondsEarned: 20,
			},
			Report: &entity.StreakReport{
				HabitID:        habitID,
				Streak:         10,
				HighestStreak:  10,
				DiamondsEarned: 20,
				CalculatedOn:   streakToday,
			},
		},
		{
			Desc:    "yesterday done keeps streak without paying",
			State:   entity.StreakState{Streak: 9, HighestStreakAchieved: 9},
			Checks:  checkRun(habitID, streakToday.AddDate(0, 0, -1), 10),
			Balance: 0,
			Outcome: &entity.StreakOutcome{
				HabitID:      habitID,
				UserID:       userID,
				State:        entity.StreakState{Streak: 10, HighestStreakAchieved: 10, FreezeAppliedDates: []time.Time{}},
				CalculatedOn: streakToday,
			},
			Report: &entity.StreakReport{
				HabitID:       habitID,
				Streak:        10,
				HighestStreak: 10,
				CalculatedOn:  streakToday,
			},
		},
		{
			Desc:    "freeze days cover the gap",
			State:   entity.StreakState{Streak: 10, HighestStreakAchieved: 10},
			Checks:  checkRun(habitID, streakToday.AddDate(0, 0, -4), 10),
			Balance: 5,
			Outcome: &entity.StreakOutcome{
				HabitID: habitID,
				UserID:  userID,
				State: entity.StreakState{
					Streak:                      10,
					HighestStreakAchieved:       10,
					CurrentGapStartDate:         ptr(streakToday.AddDate(0, 0, -3)),
					FreezeDaysUsedForCurrentGap: 2,
					FreezeAppliedDates:          []time.Time{streakToday.AddDate(0, 0, -2), streakToday.AddDate(0, 0, -1)},
				},
				CalculatedOn:   streakToday,
				FreezeDaysUsed: 2,
			},
			Report: &entity.StreakReport{
				HabitID:              habitID,
				Streak:               10,
				HighestStreak:        10,
				FreezeDaysUsed:       2,
				GraceUsed:            true,
				GapStartDate:         ptr(streakToday.AddDate(0, 0, -3)),
				FreezeDaysUsedForGap: 2,
				CalculatedOn:         streakToday,
			},
		},
		{
			Desc:    "no freeze days breaks the streak down",
			State:   entity.StreakState{Streak: 10, HighestStreakAchieved: 10},
			Checks:  checkRun(habitID, streakToday.AddDate(0, 0, -4), 10),
			Balance: 0,
			Outcome: &entity.StreakOutcome{
				HabitID: habitID,
				UserID:  userID,
				State: entity.StreakState{
					Streak:                8,
					HighestStreakAchieved: 10,
					CurrentGapStartDate:   ptr(streakToday.AddDate(0, 0, -3)),
					FreezeAppliedDates:    []time.Time{},
				},
				CalculatedOn: streakToday,
			},
			Report: &entity.StreakReport{
				HabitID:       habitID,
				Streak:        8,
				HighestStreak: 10,
				GraceUsed:     true,
				GapStartDate:  ptr(streakToday.AddDate(0, 0, -3)),
				CalculatedOn:  streakToday,
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			serv, m := newStreakService(t, streakToday.Add(time.Hour*15))
			m.habits.EXPECT().GetByID(gomock.Any(), habitID).Return(&entity.Habit{
				ID:          habitID,
				UserID:      userID,
				StreakState: tc.State,
			}, nil)
			m.checks.EXPECT().GetByHabitID(gomock.Any(), habitID).Return(tc.Checks, nil)
			m.rewards.EXPECT().Get(gomock.Any(), userID).Return(&entity.UserRewards{UserID: userID, FreezeDays: tc.Balance}, nil)
			m.rewards.EXPECT().SaveStreakOutcome(gomock.Any(), tc.Outcome).Return(nil)
			rep, err := serv.Recalculate(context.Background(), habitID, userID)
			require.NoError(t, err)
			assert.Equal(t, tc.Report, rep)
		})
	}
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestRecalculateRereadsBalance(t *testing.T) {
	habitID := uuid.New()
	userID := uuid.New()
	serv, m := newStreakService(t, streakToday)
	m.habits.EXPECT().GetByID(gomock.Any(), habitID).Return(&entity.Habit{
		ID:          habitID,
		UserID:      userID,
		StreakState: entity.StreakState{Streak: 10, HighestStreakAchieved: 10},
	}, nil)
	m.checks.EXPECT().GetByHabitID(gomock.Any(), habitID).Return(checkRun(habitID, streakToday.AddDate(0, 0, -4), 10), nil)
	gomock.InOrder(
		m.rewards.EXPECT().Get(gomock.Any(), userID).Return(&entity.UserRewards{FreezeDays: 2}, nil),
		m.rewards.EXPECT().SaveStreakOutcome(gomock.Any(), gomock.Any()).Return(errorvalues.ErrNotEnoughFreezeDays),
		m.rewards.EXPECT().Get(gomock.Any(), userID).Return(&entity.UserRewards{FreezeDays: 1}, nil),
		m.rewards.EXPECT().SaveStreakOutcome(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, o *entity.StreakOutcome) error {
				assert.Equal(t, 1, o.FreezeDaysUsed)
				assert.Equal(t, 9, o.State.Streak)
				return nil
			}),
	)
	rep, err := serv.Recalculate(context.Background(), habitID, userID)
	require.NoError(t, err)
	assert.Equal(t, 9, rep.Streak)
	assert.Equal(t, 1, rep.FreezeDaysUsed)
}

func TestRecalculateStartsOverOnStaleState(t *testing.T) {
	habitID := uuid.New()
	userID := uuid.New()
	serv, m := newStreakService(t, streakToday)
	checks := checkRun(habitID, streakToday, 10)
	gomock.InOrder(
		m.habits.EXPECT().GetByID(gomock.Any(), habitID).Return(&entity.Habit{
			ID:          habitID,
			UserID:      userID,
			StreakState: entity.StreakState{Streak: 9, HighestStreakAchieved: 9},
		}, nil),
		m.checks.EXPECT().GetByHabitID(gomock.Any(), habitID).Return(checks, nil),
		m.rewards.EXPECT().Get(gomock.Any(), userID).Return(&entity.UserRewards{}, nil),
		m.rewards.EXPECT().SaveStreakOutcome(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, o *entity.StreakOutcome) error {
				assert.Equal(t, 0, o.Version)
				assert.Equal(t, 20, o.DiamondsEarned)
				return errorvalues.ErrStaleStreakState
			}),
		// Diamonds for day ten were already paid by the winning save.
		m.habits.EXPECT().GetByID(gomock.Any(), habitID).Return(&entity.Habit{
			ID:            habitID,
			UserID:        userID,
			StreakState:   entity.StreakState{Streak: 10, HighestStreakAchieved: 10},
			StreakVersion: 1,
		}, nil),
		m.checks.EXPECT().GetByHabitID(gomock.Any(), habitID).Return(checks, nil),
		m.rewards.EXPECT().Get(gomock.Any(), userID).Return(&entity.UserRewards{}, nil),
		m.rewards.EXPECT().SaveStreakOutcome(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, o *entity.StreakOutcome) error {
				assert.Equal(t, 1, o.Version)
				assert.Equal(t, 0, o.DiamondsEarned)
				return nil
			}),
	)
	rep, err := serv.Recalculate(context.Background(), habitID, userID)
	require.NoError(t, err)
	assert.Equal(t, 10, rep.Streak)
	assert.Equal(t, 0, rep.DiamondsEarned)
}

func TestRecalculateErrors(t *testing.T) {
	habitID := uuid.New()
	userID := uuid.New()
	ctx := context.Background()
	t.Run("wrong owner", func(t *testing.T) {
		serv, m := newStreakService(t, streakToday)
		m.habits.EXPECT().GetByID(gomock.Any(), habitID).Return(&entity.Habit{ID: habitID, UserID: uuid.New()}, nil)
		_, err := serv.Recalculate(ctx, habitID, userID)
		assert.ErrorIs(t, err, errorvalues.ErrWrongOwner)
	})
	t.Run("checks error", func(t *testing.T) {
		serv, m := newStreakService(t, streakToday)
		m.habits.EXPECT().GetByID(gomock.Any(), habitID).Return(&entity.Habit{ID: habitID, UserID: userID}, nil)
		m.checks.EXPECT().GetByHabitID(gomock.Any(), habitID).Return(nil, errors.New("db error"))
		_, err := serv.Recalculate(ctx, habitID, userID)
		assert.Error(t, err)
	})
	t.Run("habit deleted meanwhile", func(t *testing.T) {
		serv, m := newStreakService(t, streakToday)
		m.habits.EXPECT().GetByID(gomock.Any(), habitID).Return(&entity.Habit{ID: habitID, UserID: userID}, nil)
		m.checks.EXPECT().GetByHabitID(gomock.Any(), habitID).Return(checkRun(habitID, streakToday, 1), nil)
		m.rewards.EXPECT().Get(gomock.Any(), userID).Return(&entity.UserRewards{}, nil)
		m.rewards.EXPECT().SaveStreakOutcome(gomock.Any(), gomock.Any()).Return(errorvalues.ErrHabitNotFound)
		_, err := serv.Recalculate(ctx, habitID, userID)
		assert.ErrorIs(t, err, errorvalues.ErrHabitNotFound)
	})
	t.Run("state keeps changing", func(t *testing.T) {
		serv, m := newStreakService(t, streakToday)
		habit := &entity.Habit{ID: habitID, UserID: userID}
		m.habits.EXPECT().GetByID(gomock.Any(), habitID).Return(habit, nil).Times(3)
		m.checks.EXPECT().GetByHabitID(gomock.Any(), habitID).Return(checkRun(habitID, streakToday, 1), nil).Times(3)
		m.rewards.EXPECT().Get(gomock.Any(), userID).Return(&entity.UserRewards{}, nil).Times(3)
		m.rewards.EXPECT().SaveStreakOutcome(gomock.Any(), gomock.Any()).Return(errorvalues.ErrStaleStreakState).Times(3)
		_, err := serv.Recalculate(ctx, habitID, userID)
		assert.ErrorIs(t, err, errorvalues.ErrStaleStreakState)
	})
}

func TestToday(t *testing.T) {
	now := time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC)
	t.Run("utc", func(t *testing.T) {
		serv, _ := newStreakService(t, now)
		assert.Equal(t, streakToday, serv.Today())
	})
	t.Run("ahead of utc", func(t *testing.T) {
		serv, _ := newStreakService(t, now, service.WithLocation(time.FixedZone("UTC+9", 9*60*60)))
		assert.Equal(t, streakToday.AddDate(0, 0, 1), serv.Today())
	})
}

func TestRecalculateAll(t *testing.T) {
	serv, m := newStreakService(t, streakToday)
	userID := uuid.New()
	good := &entity.Habit{ID: uuid.New(), UserID: userID, StreakState: entity.StreakState{Streak: 9, HighestStreakAchieved: 9}}
	broken := &entity.Habit{ID: uuid.New(), UserID: userID}
	deleted := &entity.Habit{ID: uuid.New(), UserID: userID}
	m.habits.EXPECT().List(gomock.Any(), 100, 0).Return([]*entity.Habit{good, broken, deleted}, nil)
	m.habits.EXPECT().GetByID(gomock.Any(), good.ID).Return(good, nil)
	m.habits.EXPECT().GetByID(gomock.Any(), broken.ID).Return(broken, nil)
	m.habits.EXPECT().GetByID(gomock.Any(), deleted.ID).Return(nil, errorvalues.ErrHabitNotFound)
	m.checks.EXPECT().GetByHabitID(gomock.Any(), good.ID).Return(checkRun(good.ID, streakToday, 10), nil)
	m.checks.EXPECT().GetByHabitID(gomock.Any(), broken.ID).Return(nil, errors.New("db error"))
	m.rewards.EXPECT().Get(gomock.Any(), userID).Return(&entity.UserRewards{}, nil)
	m.rewards.EXPECT().SaveStreakOutcome(gomock.Any(), gomock.Any()).Return(nil)

	summary, err := serv.RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &service.RecalcSummary{Processed: 2, Failed: 1, DiamondsEarned: 20}, summary)
}

func TestRecalculateAllSeesConcurrentRecalculation(t *testing.T) {
	serv, m := newStreakService(t, streakToday)
	ctx := context.Background()
	userID := uuid.New()
	stored := entity.Habit{
		ID:          uuid.New(),
		UserID:      userID,
		StreakState: entity.StreakState{Streak: 9, HighestStreakAchieved: 9},
	}
	diamonds := 0
	m.habits.EXPECT().GetByID(gomock.Any(), stored.ID).DoAndReturn(
		func(context.Context, uuid.UUID) (*entity.Habit, error) {
			h := stored
			return &h, nil
		}).Times(2)
	m.checks.EXPECT().GetByHabitID(gomock.Any(), stored.ID).Return(checkRun(stored.ID, streakToday, 10), nil).Times(2)
	m.rewards.EXPECT().Get(gomock.Any(), userID).Return(&entity.UserRewards{UserID: userID}, nil).Times(2)
	m.rewards.EXPECT().SaveStreakOutcome(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, o *entity.StreakOutcome) error {
			if o.Version != stored.StreakVersion {
				return errorvalues.ErrStaleStreakState
			}
			stored.StreakState = o.State
			stored.StreakVersion++
			diamonds += o.DiamondsEarned
			return nil
		}).Times(2)
	// A user's request lands after the job listed the habit but before it
	// took the owner's lock.
	m.habits.EXPECT().List(gomock.Any(), 100, 0).DoAndReturn(
		func(context.Context, int, int) ([]*entity.Habit, error) {
			snapshot := stored
			rep, err := serv.Recalculate(ctx, stored.ID, userID)
			require.NoError(t, err)
			assert.Equal(t, 20, rep.DiamondsEarned)
			return []*entity.Habit{&snapshot}, nil
		})

	summary, err := serv.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, &service.RecalcSummary{Processed: 1}, summary)
	assert.Equal(t, 20, diamonds)
	assert.Equal(t, 10, stored.Streak)
	assert.Equal(t, 2, stored.StreakVersion)
}

func TestRecalculateAllListError(t *testing.T) {
	serv, m := newStreakService(t, streakToday)
	m.habits.EXPECT().List(gomock.Any(), 100, 0).Return(nil, errors.New("db error"))
	_, err := serv.RecalculateAll(context.Background())
	assert.Error(t, err)
}

func TestGetCalendar(t *testing.T) {
	habitID := uuid.New()
	userID := uuid.New()
	ctx := context.Background()
	t.Run("week", func(t *testing.T) {
		serv, m := newStreakService(t, streakToday)
		m.habits.EXPECT().GetByID(gomock.Any(), habitID).Return(&entity.Habit{ID: habitID, UserID: userID}, nil)
		m.checks.EXPECT().GetByHabitID(gomock.Any(), habitID).Return(checkRun(habitID, streakToday.AddDate(0, 0, -2), 3), nil)
		days, err := serv.GetCalendar(ctx, habitID, userID, streakToday.AddDate(0, 0, -5), streakToday.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, days, 7)
		kinds := make([]string, 0, len(days))
		for _, d := range days {
			kinds = append(kinds, d.Kind)
		}
		assert.Equal(t, []string{"inactive", "completed", "completed", "completed", "grace", "today", "future"}, kinds)
	})
	t.Run("inverted range", func(t *testing.T) {
		serv, _ := newStreakService(t, streakToday)
		_, err := serv.GetCalendar(ctx, habitID, userID, streakToday, streakToday.AddDate(0, 0, -1))
		assert.ErrorIs(t, err, errorvalues.ErrInvalidDateRange)
	})
	t.Run("too long", func(t *testing.T) {
		serv, _ := newStreakService(t, streakToday)
		_, err := serv.GetCalendar(ctx, habitID, userID, streakToday.AddDate(-2, 0, 0), streakToday)
		assert.ErrorIs(t, err, errorvalues.ErrInvalidDateRange)
	})
}

func TestStreakServiceIntegrational(t *testing.T) {
	cfg := setupTestDB(t)
	usersRepo := repository.NewUsersRepo(cfg)
	habitsRepo := repository.NewHabitsRepo(cfg)
	checksRepo := repository.NewHabitChecksRepo(cfg)
	rewardsRepo := repository.NewRewardsRepo(cfg)
	ctx := context.Background()

	uid, err := usersRepo.Create(ctx, &entity.User{Name: "streaker", PasswordHash: "hash"})
	require.NoError(t, err)
	habitID, err := habitsRepo.Create(ctx, &entity.Habit{UserID: uid, Title: "read", Description: "20 pages"})
	require.NoError(t, err)

	now := streakToday
	streaks := service.NewStreakService(habitsRepo, checksRepo, rewardsRepo,
		service.WithClock(func() time.Time { return now }))
	checks := service.NewHabitChecksService(habitsRepo, checksRepo, streaks)
	rewards := service.NewRewardsService(rewardsRepo, 10)

	t.Run("ten days earn diamonds", func(t *testing.T) {
		var rep *entity.StreakReport
		for i := 9; i >= 0; i-- {
			rep, err = checks.CheckHabit(ctx, habitID, uid, streakToday.AddDate(0, 0, -i))
			require.NoError(t, err)
		}
		require.NotNil(t, rep)
		assert.Equal(t, 10, rep.Streak)
		assert.Equal(t, 20, rep.DiamondsEarned)
	})
	t.Run("buy freeze days", func(t *testing.T) {
		balance, err := rewards.PurchaseFreezeDays(ctx, uid, service.PurchaseFreezeDaysRequest{Days: 2})
		require.NoError(t, err)
		assert.Equal(t, 0, balance.Diamonds)
		assert.Equal(t, 2, balance.FreezeDays)
	})
	t.Run("gap is frozen once", func(t *testing.T) {
		now = streakToday.AddDate(0, 0, 4)
		for range 2 {
			rep, err := streaks.Recalculate(ctx, habitID, uid)
			require.NoError(t, err)
			assert.Equal(t, 10, rep.Streak)
			assert.Equal(t, 2, rep.FreezeDaysUsedForGap)
		}
		balance, err := rewards.GetRewards(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, 0, balance.FreezeDays)
		habit, err := habitsRepo.GetByID(ctx, habitID)
		require.NoError(t, err)
		assert.Len(t, habit.FreezeAppliedDates, 2)
	})
	t.Run("calendar shows grace and freeze", func(t *testing.T) {
		days, err := streaks.GetCalendar(ctx, habitID, uid, streakToday, now)
		require.NoError(t, err)
		kinds := make([]string, 0, len(days))
		for _, d := range days {
			kinds = append(kinds, d.Kind)
		}
		assert.Equal(t, []string{"completed", "grace", "freeze", "freeze", "today"}, kinds)
	})
}
