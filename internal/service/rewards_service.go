package service

import (
	"context"
	"errors"
	"log"
	"log/slog"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/habitstreak/internal/error_values"
	"github.com/limbo/habitstreak/internal/repository"
	"github.com/limbo/habitstreak/pkg/entity"
)

type RewardsService struct {
	repo           repository.RewardsRepositoryI
	freezeDayPrice int
}

func NewRewardsService(rewardsRepo repository.RewardsRepositoryI, freezeDayPrice int) *RewardsService {
	if rewardsRepo == nil {
		log.Fatal("provided nil rewardsRepo")
	}
	if freezeDayPrice < 1 {
		log.Fatal("freeze day price must be positive")
	}
	return &RewardsService{
		repo:           rewardsRepo,
		freezeDayPrice: freezeDayPrice,
	}
}

func (rs *RewardsService) GetRewards(ctx context.Context, uid uuid.UUID) (*entity.UserRewards, error) {
	rewards, err := rs.repo.Get(ctx, uid)
	if err != nil {
		return nil, errors.New("rewards repository error: " + err.Error())
	}
	return rewards, nil
}

// PurchaseFreezeDays exchanges diamonds for freeze days at the configured price.
func (rs *RewardsService) PurchaseFreezeDays(ctx context.Context, uid uuid.UUID, req PurchaseFreezeDaysRequest) (*entity.UserRewards, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	cost := req.Days * rs.freezeDayPrice
	rewards, err := rs.repo.PurchaseFreezeDays(ctx, uid, req.Days, cost)
	if err != nil {
		if errors.Is(err, errorvalues.ErrNotEnoughDiamonds) {
			return nil, err
		}
		return nil, errors.New("rewards repository error: " + err.Error())
	}
	slog.Default().Info("freeze days purchased",
		slog.String("uid", uid.String()),
		slog.Int("days", req.Days),
		slog.Int("cost", cost),
	)
	return rewards, nil
}
