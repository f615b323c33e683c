package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	errorvalues "github.com/limbo/habitstreak/internal/error_values"
	"github.com/limbo/habitstreak/internal/service"
	"github.com/limbo/habitstreak/pkg/httputil"
)

type PurchaseFreezeDaysRequest struct {
	Days int `json:"days"`
}

func (s *Server) GetRewards(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get rewards error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*5)
	defer cancel()
	rewards, err := s.rewardsService.GetRewards(ctx, uid)
	if err != nil {
		logger.Error("get rewards error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while getting rewards", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, rewards)
}

func (s *Server) PurchaseFreezeDays(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("purchase error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req PurchaseFreezeDaysRequest
	defer r.Body.Close()
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("purchase error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*10)
	defer cancel()
	rewards, err := s.rewardsService.PurchaseFreezeDays(ctx, uid, service.PurchaseFreezeDaysRequest{Days: req.Days})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrValidation):
			logger.Error("purchase error: invalid days amount")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid days amount", err)
		case errors.Is(err, errorvalues.ErrNotEnoughDiamonds):
			logger.Error("purchase error: not enough diamonds")
			httputil.WriteErrorResponse(w, http.StatusConflict, "not enough diamonds", nil)
		default:
			logger.Error("purchase error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while purchasing freeze days", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, rewards)
	logger.Info("freeze days purchased", slog.Int("days", req.Days))
}
