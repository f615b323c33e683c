package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/habitstreak/internal/error_values"
	"github.com/limbo/habitstreak/pkg/entity"
	"github.com/limbo/habitstreak/pkg/httputil"
)

type CheckHabitRequest struct {
	// YYYY-MM-DD, today when empty
	Date string `json:"date"`
}

type CheckHabitResponse struct {
	HabitID string               `json:"habit_id"`
	Date    string               `json:"date"`
	Streak  *entity.StreakReport `json:"streak,omitempty"`
}

type HabitChecksResponse struct {
	HabitID string              `json:"habit_id"`
	From    string              `json:"from"`
	To      string              `json:"to"`
	Checks  []entity.HabitCheck `json:"checks"`
}

type CalendarDayResponse struct {
	Date string `json:"date"`
	Kind string `json:"kind"`
}

type CalendarResponse struct {
	HabitID string                `json:"habit_id"`
	From    string                `json:"from"`
	To      string                `json:"to"`
	Days    []CalendarDayResponse `json:"days"`
}

// habitRequest pulls the authenticated user and the habit id out of r.
// On failure the response is already written.
func habitRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string) (uuid.UUID, uuid.UUID, bool) {
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error(op + ": unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return uuid.Nil, uuid.Nil, false
	}
	habitID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error(op + ": invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value", nil)
		return uuid.Nil, uuid.Nil, false
	}
	return uid, habitID, true
}

func writeHabitError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, errorvalues.ErrHabitNotFound):
		logger.Error(op + ": unexist habit")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "habit doesn't exist", nil)
	case errors.Is(err, errorvalues.ErrWrongOwner):
		logger.Error(op + ": habit has different owner")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "habit doesn't exist", nil)
	case errors.Is(err, errorvalues.ErrCheckExist):
		logger.Error(op + ": date already checked")
		httputil.WriteErrorResponse(w, http.StatusConflict, "habit already checked on this date", nil)
	case errors.Is(err, errorvalues.ErrCheckNotFound):
		logger.Error(op + ": date isn't checked")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "habit isn't checked on this date", nil)
	case errors.Is(err, errorvalues.ErrCheckDateNotAllowed):
		logger.Error(op + ": date in the future")
		httputil.WriteErrorResponse(w, http.StatusUnprocessableEntity, "habit can't be checked in the future", nil)
	case errors.Is(err, errorvalues.ErrInvalidDateRange):
		logger.Error(op + ": invalid date range")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid date range", nil)
	case errors.Is(err, errorvalues.ErrStaleStreakState):
		logger.Warn(op + ": streak kept changing during recalculation")
		httputil.WriteErrorResponse(w, http.StatusConflict, "streak is being updated, try again", nil)
	default:
		logger.Error(op+": service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func (s *Server) CheckHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, habitID, ok := habitRequest(w, r, logger, "check habit error")
	if !ok {
		return
	}
	defer r.Body.Close()
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("check habit error: reading body", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	var req CheckHabitRequest
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := sonic.Unmarshal(raw, &req); err != nil {
			logger.Error("check habit error: invalid request body")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
			return
		}
	}
	date := s.streakService.Today()
	if req.Date != "" {
		if date, err = httputil.ParseDate(req.Date); err != nil {
			logger.Error("check habit error: invalid date")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format", nil)
			return
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	report, err := s.checksService.CheckHabit(ctx, habitID, uid, date)
	if err != nil {
		writeHabitError(w, logger, "check habit error", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, CheckHabitResponse{
		HabitID: habitID.String(),
		Date:    date.Format(time.DateOnly),
		Streak:  report,
	})
	logger.Info("habit checked", slog.String("date", date.Format(time.DateOnly)))
}

func (s *Server) UncheckHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, habitID, ok := habitRequest(w, r, logger, "uncheck habit error")
	if !ok {
		return
	}
	date, err := httputil.ParseDate(r.PathValue("date"))
	if err != nil {
		logger.Error("uncheck habit error: invalid date")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	report, err := s.checksService.UncheckHabit(ctx, habitID, uid, date)
	if err != nil {
		writeHabitError(w, logger, "uncheck habit error", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, CheckHabitResponse{
		HabitID: habitID.String(),
		Date:    date.Format(time.DateOnly),
		Streak:  report,
	})
	logger.Info("habit unchecked", slog.String("date", date.Format(time.DateOnly)))
}

func (s *Server) GetHabitChecks(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, habitID, ok := habitRequest(w, r, logger, "get checks error")
	if !ok {
		return
	}
	from, to, err := httputil.ParseDateRange(r, s.streakService.Today())
	if err != nil {
		logger.Error("get checks error: invalid date range")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "from and to must be in YYYY-MM-DD format", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	checks, err := s.checksService.GetHabitChecks(ctx, habitID, uid, from, to)
	if err != nil {
		writeHabitError(w, logger, "get checks error", err)
		return
	}
	if checks == nil {
		checks = []entity.HabitCheck{}
	}
	httputil.WriteJSONResponse(w, http.StatusOK, HabitChecksResponse{
		HabitID: habitID.String(),
		From:    from.Format(time.DateOnly),
		To:      to.Format(time.DateOnly),
		Checks:  checks,
	})
}

func (s *Server) GetHabitStats(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, habitID, ok := habitRequest(w, r, logger, "get stats error")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	stats, err := s.checksService.GetHabitStats(ctx, habitID, uid)
	if err != nil {
		writeHabitError(w, logger, "get stats error", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, stats)
}

func (s *Server) RecalculateStreak(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, habitID, ok := habitRequest(w, r, logger, "recalculate streak error")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*15)
	defer cancel()
	report, err := s.streakService.Recalculate(ctx, habitID, uid)
	if err != nil {
		writeHabitError(w, logger, "recalculate streak error", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, report)
	logger.Info("streak recalculated", slog.Int("streak", report.Streak))
}

func (s *Server) GetCalendar(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, habitID, ok := habitRequest(w, r, logger, "get calendar error")
	if !ok {
		return
	}
	from, to, err := httputil.ParseDateRange(r, s.streakService.Today())
	if err != nil {
		logger.Error("get calendar error: invalid date range")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "from and to must be in YYYY-MM-DD format", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	days, err := s.streakService.GetCalendar(ctx, habitID, uid, from, to)
	if err != nil {
		writeHabitError(w, logger, "get calendar error", err)
		return
	}
	resp := CalendarResponse{
		HabitID: habitID.String(),
		From:    from.Format(time.DateOnly),
		To:      to.Format(time.DateOnly),
		Days:    make([]CalendarDayResponse, 0, len(days)),
	}
	for _, d := range days {
		resp.Days = append(resp.Days, CalendarDayResponse{
			Date: d.Date.Format(time.DateOnly),
			Kind: d.Kind,
		})
	}
	httputil.WriteJSONResponse(w, http.StatusOK, resp)
}
