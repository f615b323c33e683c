package service

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/habitstreak/internal/error_values"
	"github.com/limbo/habitstreak/internal/repository"
	"github.com/limbo/habitstreak/internal/streak"
	"github.com/limbo/habitstreak/pkg/entity"
)

type HabitChecksService struct {
	habitsRepo repository.HabitsRepositoryI
	checksRepo repository.HabitChecksRepositoryI
	streaks    StreakServiceI
}

func NewHabitChecksService(habitsRepo repository.HabitsRepositoryI, checksRepo repository.HabitChecksRepositoryI, streaks StreakServiceI) *HabitChecksService {
	if habitsRepo == nil || checksRepo == nil || streaks == nil {
		log.Fatal("on habit checks service provided nil dependencies")
	}
	return &HabitChecksService{
		habitsRepo: habitsRepo,
		checksRepo: checksRepo,
		streaks:    streaks,
	}
}

// CheckHabit stores a completion for the calendar day of date. Past days may
// be filled in retroactively, the streak is rebuilt right after.
func (serv *HabitChecksService) CheckHabit(ctx context.Context, habitID, userID uuid.UUID, date time.Time) (*entity.StreakReport, error) {
	if _, err := ownedHabit(ctx, serv.habitsRepo, habitID, userID); err != nil {
		return nil, err
	}
	day := streak.DateOf(date)
	if day.After(serv.streaks.Today()) {
		return nil, errorvalues.ErrCheckDateNotAllowed
	}
	exist, err := serv.checksRepo.Exists(ctx, habitID, day)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	if exist {
		return nil, errorvalues.ErrCheckExist
	}
	err = serv.checksRepo.Create(ctx, habitID, day)
	if err != nil {
		if errors.Is(err, errorvalues.ErrCheckExist) {
			return nil, err
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	return serv.recalculate(ctx, habitID, userID), nil
}

func (serv *HabitChecksService) UncheckHabit(ctx context.Context, habitID, userID uuid.UUID, date time.Time) (*entity.StreakReport, error) {
	if _, err := ownedHabit(ctx, serv.habitsRepo, habitID, userID); err != nil {
		return nil, err
	}
	day := streak.DateOf(date)
	exist, err := serv.checksRepo.Exists(ctx, habitID, day)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	if !exist {
		return nil, errorvalues.ErrCheckNotFound
	}
	err = serv.checksRepo.Delete(ctx, habitID, day)
	if err != nil {
		if errors.Is(err, errorvalues.ErrCheckNotFound) {
			return nil, err
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	return serv.recalculate(ctx, habitID, userID), nil
}

// recalculate never fails the check itself: the nightly job catches up.
func (serv *HabitChecksService) recalculate(ctx context.Context, habitID, userID uuid.UUID) *entity.StreakReport {
	report, err := serv.streaks.Recalculate(ctx, habitID, userID)
	if err != nil {
		slog.Default().Error("recalculating streak after check error",
			slog.String("habit_id", habitID.String()),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return report
}

func (serv *HabitChecksService) GetHabitChecks(ctx context.Context, habitID, userID uuid.UUID, from, to time.Time) ([]entity.HabitCheck, error) {
	from, to = streak.DateOf(from), streak.DateOf(to)
	if to.Before(from) {
		return nil, errorvalues.ErrInvalidDateRange
	}
	if _, err := ownedHabit(ctx, serv.habitsRepo, habitID, userID); err != nil {
		return nil, err
	}
	checks, err := serv.checksRepo.GetByHabitAndDateRange(ctx, habitID, from, to)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return checks, nil
}

// GetHabitStats reports the streak as of the last recalculation.
func (serv *HabitChecksService) GetHabitStats(ctx context.Context, habitID, userID uuid.UUID) (*entity.HabitStats, error) {
	habit, err := ownedHabit(ctx, serv.habitsRepo, habitID, userID)
	if err != nil {
		return nil, err
	}
	total, err := serv.checksRepo.CountByHabitID(ctx, habitID)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	last, err := serv.checksRepo.GetLastCheckDate(ctx, habitID)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return &entity.HabitStats{
		ID:            habit.ID,
		TotalChecks:   total,
		CurrentStreak: habit.Streak,
		MaxStreak:     habit.HighestStreakAchieved,
		LastCheck:     last,
	}, nil
}
