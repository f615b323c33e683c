package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/limbo/habitstreak/internal/api"
	"github.com/limbo/habitstreak/internal/jobs"
	"github.com/limbo/habitstreak/internal/repository"
	"github.com/limbo/habitstreak/internal/service"
	"github.com/limbo/habitstreak/pkg/cleanup"
	"github.com/limbo/habitstreak/pkg/config"
	jwtservice "github.com/limbo/habitstreak/pkg/jwt_service"
)

func init() {
	service.InitValidator()
}

func main() {
	cfg := config.New()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.AppLogLevel)}))
	slog.SetDefault(logger)

	dbCfg := repository.PGCfg{
		Address:  cfg.PostgresAddress,
		Username: cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		DB:       cfg.PostgresDB,
	}
	pool := repository.NewPool(&dbCfg)
	habitsRepo := repository.NewHabitsRepoWithConn(pool)
	checksRepo := repository.NewHabitChecksRepoWithConn(pool)
	rewardsRepo := repository.NewRewardsRepoWithConn(pool)

	streakService := service.NewStreakService(habitsRepo, checksRepo, rewardsRepo,
		service.WithLocation(cfg.Location()),
		service.WithLogger(logger),
	)
	serv := api.New(&api.ServicesList{
		UserService:        service.NewUserService(repository.NewUsersRepoWithConn(pool)),
		HabitsService:      service.NewHabitsService(habitsRepo),
		HabitChecksService: service.NewHabitChecksService(habitsRepo, checksRepo, streakService),
		StreakService:      streakService,
		RewardsService:     service.NewRewardsService(rewardsRepo, cfg.FreezeDayPrice),
		JwtService:         jwtservice.New(cfg.JWTSecret),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scheduler := jobs.NewScheduler(streakService, cfg.StreakRecalcSchedule, cfg.Location(), logger)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal("starting scheduler error: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{Name: "stopping scheduler", F: scheduler.Stop})

	done := make(chan struct{})
	go func() {
		defer close(done)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		logger.Info("shutting down", slog.String("signal", s.String()))
		cancel()
		cleanup.CleanUp()
	}()

	if err := serv.Run(cfg.APIAddress); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		cleanup.CleanUp()
		os.Exit(1)
	}
	<-done
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
