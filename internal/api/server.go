package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/limbo/habitstreak/internal/service"
	"github.com/limbo/habitstreak/pkg/cleanup"
)

type Server struct {
	mx             *chi.Mux
	userService    service.UserServiceI
	habitService   service.HabitsServiceI
	checksService  service.HabitChecksServiceI
	streakService  service.StreakServiceI
	rewardsService service.RewardsServiceI
	jwtService     JWTServiceI
	limiter        *ipRateLimiter
}

type ServicesList struct {
	UserService        service.UserServiceI
	HabitsService      service.HabitsServiceI
	HabitChecksService service.HabitChecksServiceI
	StreakService      service.StreakServiceI
	RewardsService     service.RewardsServiceI
	JwtService         JWTServiceI
	// Requests per minute allowed from one client. Zero disables limiting.
	RateLimitPerMinute int
}

func New(servicesOptions *ServicesList) *Server {
	s := &Server{
		mx:             chi.NewMux(),
		userService:    servicesOptions.UserService,
		habitService:   servicesOptions.HabitsService,
		checksService:  servicesOptions.HabitChecksService,
		streakService:  servicesOptions.StreakService,
		rewardsService: servicesOptions.RewardsService,
		jwtService:     servicesOptions.JwtService,
	}
	if servicesOptions.RateLimitPerMinute > 0 {
		s.limiter = newIPRateLimiter(servicesOptions.RateLimitPerMinute)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mx.Use(middleware.RealIP, middleware.Recoverer)
	s.mx.Use(s.RequestIDMiddleware, s.SettingUpLoggerMiddleware, s.RateLimitMiddleware)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.Register)
		r.Post("/auth/login", s.Login)
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware, s.LoggerExtensionMiddleware)
			r.Get("/habits", s.GetHabits)
			r.Post("/habits", s.CreateHabit)
			r.Get("/habits/{id}", s.GetHabit)
			r.Delete("/habits/{id}", s.DeleteHabit)
			r.Post("/habits/{id}/checks", s.CheckHabit)
			r.Get("/habits/{id}/checks", s.GetHabitChecks)
			r.Delete("/habits/{id}/checks/{date}", s.UncheckHabit)
			r.Get("/habits/{id}/stats", s.GetHabitStats)
			r.Post("/habits/{id}/streak", s.RecalculateStreak)
			r.Get("/habits/{id}/calendar", s.GetCalendar)
			r.Get("/rewards", s.GetRewards)
			r.Post("/rewards/freeze-days", s.PurchaseFreezeDays)
		})
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mx.ServeHTTP(w, r)
}

// Run serves until the server is shut down through the cleanup registry.
func (s *Server) Run(address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.mx,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       time.Minute,
	}
	cleanup.Register(&cleanup.Job{
		Name: "shutting down http server",
		F: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	})
	slog.Info("http server started", slog.String("address", address))
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
