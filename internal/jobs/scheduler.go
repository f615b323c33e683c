// Package jobs runs background work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/limbo/habitstreak/internal/service"
	"github.com/robfig/cron/v3"
)

type Recalculator interface {
	RecalculateAll(ctx context.Context) (*service.RecalcSummary, error)
}

// Scheduler resolves streak gaps for every habit once per schedule tick, so
// freeze days are charged even for users who don't open the app.
type Scheduler struct {
	cron     *cron.Cron
	streaks  Recalculator
	schedule string
	logger   *slog.Logger
	entry    cron.EntryID
}

func NewScheduler(streaks Recalculator, schedule string, loc *time.Location, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "scheduler"))
	cl := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		streaks:  streaks,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the recalculation job and starts the cron loop. ctx is
// passed to every run.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.schedule, err)
	}
	s.entry = id
	s.cron.Start()
	s.logger.Info("scheduler started", slog.String("schedule", s.schedule), slog.Time("next_run", s.Next()))
	return nil
}

// RunOnce recalculates every habit and logs the summary.
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := time.Now()
	s.logger.Info("streak recalculation started")
	summary, err := s.streaks.RecalculateAll(ctx)
	if err != nil {
		s.logger.Error("streak recalculation failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("streak recalculation finished",
		slog.Int("processed", summary.Processed),
		slog.Int("failed", summary.Failed),
		slog.Int("diamonds_earned", summary.DiamondsEarned),
		slog.Int("freeze_days_used", summary.FreezeDaysUsed),
		slog.Duration("took", time.Since(start)),
	)
}

// Next is the time of the next scheduled run, zero before Start.
func (s *Scheduler) Next() time.Time {
	if s.entry == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() error {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, slog.String("error", err.Error()))...)
}
