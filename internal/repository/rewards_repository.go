package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	errorvalues "github.com/limbo/habitstreak/internal/error_values"
	"github.com/limbo/habitstreak/pkg/entity"
)

type RewardsRepository struct {
	conn PgConnection
}

func NewRewardsRepo(cfg DBConfig) *RewardsRepository {
	return NewRewardsRepoWithConn(NewPool(cfg))
}

func NewRewardsRepoWithConn(conn PgConnection) *RewardsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for rewardsRepo: " + err.Error())
	}
	return &RewardsRepository{
		conn: conn,
	}
}

func (rr *RewardsRepository) Get(ctx context.Context, uid uuid.UUID) (*entity.UserRewards, error) {
	rewards := entity.UserRewards{UserID: uid}
	row := rr.conn.QueryRow(ctx, `SELECT diamonds, freeze_days FROM user_rewards WHERE user_id = $1;`, uid)
	if err := row.Scan(&rewards.Diamonds, &rewards.FreezeDays); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &rewards, nil
		}
		return nil, errors.New("getting rewards error: " + err.Error())
	}
	return &rewards, nil
}

func (rr *RewardsRepository) PurchaseFreezeDays(ctx context.Context, uid uuid.UUID, days, cost int) (*entity.UserRewards, error) {
	tx, err := rr.conn.Begin(ctx)
	if err != nil {
		return nil, errors.New("starting tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)

	var diamonds int
	err = tx.QueryRow(ctx, `SELECT diamonds FROM user_rewards WHERE user_id = $1 FOR UPDATE;`, uid).Scan(&diamonds)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrNotEnoughDiamonds
		}
		return nil, errors.New("locking rewards error: " + err.Error())
	}
	if diamonds < cost {
		return nil, errorvalues.ErrNotEnoughDiamonds
	}
	rewards := entity.UserRewards{UserID: uid}
	err = tx.QueryRow(ctx,
		`UPDATE user_rewards SET diamonds = diamonds - $1, freeze_days = freeze_days + $2 WHERE user_id = $3 RETURNING diamonds, freeze_days;`,
		cost, days, uid,
	).Scan(&rewards.Diamonds, &rewards.FreezeDays)
	if err != nil {
		return nil, errors.New("purchasing freeze days error: " + err.Error())
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, errors.New("committing purchase error: " + err.Error())
	}
	return &rewards, nil
}

// SaveStreakOutcome persists a recalculation. The habit row is written only if
// its streak_version still equals outcome.Version, and freeze days are deducted
// only if the balance still covers them, otherwise nothing is written.
func (rr *RewardsRepository) SaveStreakOutcome(ctx context.Context, outcome *entity.StreakOutcome) error {
	if outcome == nil {
		return errors.New("outcome is nil")
	}
	applied := outcome.State.FreezeAppliedDates
	if applied == nil {
		applied = []time.Time{}
	}
	tx, err := rr.conn.Begin(ctx)
	if err != nil {
		return errors.New("starting tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		`UPDATE habits SET streak = $1, highest_streak = $2, current_gap_start = $3, freeze_days_used_for_gap = $4, freeze_applied_dates = $5, last_streak_update = $6, streak_version = streak_version + 1, updated_at = NOW() WHERE id = $7 AND streak_version = $8;`,
		outcome.State.Streak,
		outcome.State.HighestStreakAchieved,
		outcome.State.CurrentGapStartDate,
		outcome.State.FreezeDaysUsedForCurrentGap,
		applied,
		outcome.CalculatedOn,
		outcome.HabitID,
		outcome.Version,
	)
	if err != nil {
		return errors.New("saving streak state error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		var exists bool
		err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM habits WHERE id = $1);`, outcome.HabitID).Scan(&exists)
		if err != nil {
			return errors.New("checking habit existence error: " + err.Error())
		}
		if !exists {
			return errorvalues.ErrHabitNotFound
		}
		return errorvalues.ErrStaleStreakState
	}
	if outcome.FreezeDaysUsed > 0 {
		ct, err = tx.Exec(ctx,
			`UPDATE user_rewards SET freeze_days = freeze_days - $1 WHERE user_id = $2 AND freeze_days >= $1;`,
			outcome.FreezeDaysUsed, outcome.UserID,
		)
		if err != nil {
			return errors.New("deducting freeze days error: " + err.Error())
		}
		if ct.RowsAffected() == 0 {
			return errorvalues.ErrNotEnoughFreezeDays
		}
	}
	if outcome.DiamondsEarned > 0 {
		_, err = tx.Exec(ctx,
			`INSERT INTO user_rewards (user_id, diamonds) VALUES ($1, $2) ON CONFLICT (user_id) DO UPDATE SET diamonds = user_rewards.diamonds + EXCLUDED.diamonds;`,
			outcome.UserID, outcome.DiamondsEarned,
		)
		if err != nil {
			return errors.New("crediting diamonds error: " + err.Error())
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing streak outcome error: " + err.Error())
	}
	return nil
}
