package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/moby/locker"
	errorvalues "github.com/limbo/habitstreak/internal/error_values"
	"github.com/limbo/habitstreak/internal/repository"
	"github.com/limbo/habitstreak/internal/streak"
	"github.com/limbo/habitstreak/pkg/entity"
)

const (
	recalcPageSize    = 100
	maxSaveAttempts   = 3
	maxCalendarLength = 366
)

type StreakService struct {
	habitsRepo  repository.HabitsRepositoryI
	checksRepo  repository.HabitChecksRepositoryI
	rewardsRepo repository.RewardsRepositoryI

	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
	// locks serializes recalculations of one user's habits in this process.
	locks *locker.Locker
}

type StreakOption func(*StreakService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) StreakOption {
	return func(s *StreakService) {
		s.now = now
	}
}

// WithLocation sets the timezone calendar days are taken in.
func WithLocation(loc *time.Location) StreakOption {
	return func(s *StreakService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLogger(logger *slog.Logger) StreakOption {
	return func(s *StreakService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewStreakService(
	habitsRepo repository.HabitsRepositoryI,
	checksRepo repository.HabitChecksRepositoryI,
	rewardsRepo repository.RewardsRepositoryI,
	opts ...StreakOption,
) *StreakService {
	if habitsRepo == nil || checksRepo == nil || rewardsRepo == nil {
		log.Fatal("on streak service provided nil repos")
	}
	s := &StreakService{
		habitsRepo:  habitsRepo,
		checksRepo:  checksRepo,
		rewardsRepo: rewardsRepo,
		loc:         time.UTC,
		now:         time.Now,
		logger:      slog.Default(),
		locks:       locker.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *StreakService) Today() time.Time {
	return streak.DateOf(s.now().In(s.loc))
}

func (s *StreakService) Recalculate(ctx context.Context, habitID, userID uuid.UUID) (*entity.StreakReport, error) {
	key := userID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)
	habit, err := ownedHabit(ctx, s.habitsRepo, habitID, userID)
	if err != nil {
		return nil, err
	}
	return s.recalculate(ctx, habit)
}

// recalculate must be called with habit owner's lock held.
func (s *StreakService) recalculate(ctx context.Context, habit *entity.Habit) (*entity.StreakReport, error) {
	logger := s.logger.With(slog.String("habit_id", habit.ID.String()))
	engine := streak.New(streak.WithTracer(streak.TracerFunc(func(ev streak.Event) {
		logger.Debug("streak event",
			slog.String("kind", string(ev.Kind)),
			slog.String("date", ev.Date.Format(time.DateOnly)),
			slog.Int("value", ev.Value),
		)
	})))

	checks, err := s.checksRepo.GetByHabitID(ctx, habit.ID)
	if err != nil {
		return nil, errors.New("checks repository error: " + err.Error())
	}
	today := s.Today()
	for attempt := 1; ; attempt++ {
		rewards, err := s.rewardsRepo.Get(ctx, habit.UserID)
		if err != nil {
			return nil, errors.New("rewards repository error: " + err.Error())
		}
		result := engine.Calculate(habit.StreakState, checks, today, rewards.FreezeDays)
		outcome := &entity.StreakOutcome{
			HabitID:        habit.ID,
			UserID:         habit.UserID,
			State:          result.Apply(habit.StreakState),
			CalculatedOn:   today,
			DiamondsEarned: result.DiamondsEarned,
			FreezeDaysUsed: result.FreezeDaysUsed,
			Version:        habit.StreakVersion,
		}
		err = s.rewardsRepo.SaveStreakOutcome(ctx, outcome)
		switch {
		case err == nil:
			if outcome.DiamondsEarned > 0 || outcome.FreezeDaysUsed > 0 {
				logger.Info("streak rewards applied",
					slog.Int("streak", outcome.State.Streak),
					slog.Int("diamonds", outcome.DiamondsEarned),
					slog.Int("freeze_days", outcome.FreezeDaysUsed),
				)
			}
			return report(outcome, result), nil
		case errors.Is(err, errorvalues.ErrNotEnoughFreezeDays) && attempt < maxSaveAttempts:
			// Balance changed between reading and saving, read it again.
			logger.Warn("freeze balance changed during recalculation", slog.Int("attempt", attempt))
			continue
		case errors.Is(err, errorvalues.ErrStaleStreakState) && attempt < maxSaveAttempts:
			// Another recalculation was saved first, start over from its state.
			logger.Warn("streak state changed during recalculation", slog.Int("attempt", attempt))
			if habit, err = s.reloadHabit(ctx, habit.ID); err != nil {
				return nil, err
			}
			if checks, err = s.checksRepo.GetByHabitID(ctx, habit.ID); err != nil {
				return nil, errors.New("checks repository error: " + err.Error())
			}
			continue
		case errors.Is(err, errorvalues.ErrHabitNotFound):
			return nil, err
		default:
			return nil, fmt.Errorf("saving streak outcome: %w", err)
		}
	}
}

func (s *StreakService) reloadHabit(ctx context.Context, habitID uuid.UUID) (*entity.Habit, error) {
	habit, err := s.habitsRepo.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	return habit, nil
}

func report(outcome *entity.StreakOutcome, result streak.Result) *entity.StreakReport {
	return &entity.StreakReport{
		HabitID:              outcome.HabitID,
		Streak:               outcome.State.Streak,
		HighestStreak:        outcome.State.HighestStreakAchieved,
		DiamondsEarned:       outcome.DiamondsEarned,
		FreezeDaysUsed:       outcome.FreezeDaysUsed,
		GraceUsed:            result.GraceUsed,
		GapStartDate:         result.GapStartDate,
		FreezeDaysUsedForGap: result.TotalFreezeDaysUsedForGap,
		CalculatedOn:         outcome.CalculatedOn,
	}
}

func (s *StreakService) RecalculateAll(ctx context.Context) (*RecalcSummary, error) {
	summary := &RecalcSummary{}
	for offset := 0; ; offset += recalcPageSize {
		habits, err := s.habitsRepo.List(ctx, recalcPageSize, offset)
		if err != nil {
			return summary, errors.New("habits repository error: " + err.Error())
		}
		for _, listed := range habits {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			rep, err := s.recalculateListed(ctx, listed)
			if errors.Is(err, errorvalues.ErrHabitNotFound) {
				s.logger.Debug("habit deleted before recalculation", slog.String("habit_id", listed.ID.String()))
				continue
			}
			summary.Processed++
			if err != nil {
				summary.Failed++
				s.logger.Error("recalculating habit error",
					slog.String("habit_id", listed.ID.String()),
					slog.String("error", err.Error()),
				)
				continue
			}
			summary.DiamondsEarned += rep.DiamondsEarned
			summary.FreezeDaysUsed += rep.FreezeDaysUsed
		}
		if len(habits) < recalcPageSize {
			return summary, nil
		}
	}
}

// recalculateListed works from the habit as stored once the owner's lock is
// held, the listed copy may already be outdated.
func (s *StreakService) recalculateListed(ctx context.Context, listed *entity.Habit) (*entity.StreakReport, error) {
	key := listed.UserID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)
	habit, err := s.reloadHabit(ctx, listed.ID)
	if err != nil {
		return nil, err
	}
	return s.recalculate(ctx, habit)
}

func (s *StreakService) GetCalendar(ctx context.Context, habitID, userID uuid.UUID, from, to time.Time) ([]entity.CalendarDay, error) {
	from, to = streak.DateOf(from), streak.DateOf(to)
	if length := streak.DaysBetween(from, to); length < 0 || length >= maxCalendarLength {
		return nil, errorvalues.ErrInvalidDateRange
	}
	habit, err := ownedHabit(ctx, s.habitsRepo, habitID, userID)
	if err != nil {
		return nil, err
	}
	checks, err := s.checksRepo.GetByHabitID(ctx, habit.ID)
	if err != nil {
		return nil, errors.New("checks repository error: " + err.Error())
	}
	return streak.Calendar(habit.StreakState, checks, from, to, s.Today()), nil
}
