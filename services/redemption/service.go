package redemption

import (
	"context"
	"errors"
	"strings"

	"oilcycle-platform/pkg/config"
	"oilcycle-platform/pkg/db/option"
	"oilcycle-platform/pkg/errutil"
	"oilcycle-platform/pkg/rediskey"
	"oilcycle-platform/pkg/repository"
	"oilcycle-platform/pkg/token"
	"oilcycle-platform/services/disposal"
	"oilcycle-platform/services/identity"
	"oilcycle-platform/services/reward"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	node   *snowflake.Node
	config *config.Config
	cache  *redis.Client

	rewards     repository.Repository[reward.Reward]
	redemptions repository.Repository[Redemption]
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Node   *snowflake.Node
	Config *config.Config
	Cache  *redis.Client `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:          p.DB,
		node:        p.Node,
		config:      p.Config,
		cache:       p.Cache,
		rewards:     repository.ProvideStore[reward.Reward](p.DB),
		redemptions: repository.ProvideStore[Redemption](p.DB),
	}
}

type RedeemRequest struct {
	RewardID string `json:"reward_id"`
}

// Redeem spends points on a reward. The whole check-and-spend runs in one
// transaction with the reward row locked: the affordability check reads the
// live disposal and redemption tables, never a cached snapshot, and the
// stock decrement is conditional so tracked stock cannot go below zero.
func (s *Service) Redeem(ctx context.Context, sess identity.Session, req RedeemRequest) (*Redemption, error) {
	if strings.TrimSpace(req.RewardID) == "" {
		return nil, errutil.ValidationFailed("invalid redemption request",
			errutil.WithDetails(errutil.Detail{Field: "reward_id", Message: "required"}))
	}

	var created *Redemption
	err := s.db.Transaction(func(tx *gorm.DB) error {
		rewards := s.rewards.WithTrx(tx)

		rw, err := rewards.FindOne(ctx, &reward.Reward{ID: req.RewardID}, option.WithLockingUpdate())
		if err != nil {
			return errutil.Internal("failed to load reward", errutil.WithErr(err))
		}
		if rw == nil {
			return errutil.NotFound("reward not found")
		}
		if !rw.IsActive {
			return errutil.UnprocessableEntity("reward is not active")
		}
		if rw.Stock != nil && *rw.Stock <= 0 {
			return errutil.StockUnavailable("reward is out of stock")
		}

		available, err := availablePoints(tx, sess.UserID)
		if err != nil {
			return errutil.Internal("failed to compute balance", errutil.WithErr(err))
		}
		if available < rw.PointsRequired {
			return errutil.InsufficientPoints("not enough points for this reward")
		}

		if rw.Stock != nil {
			res := tx.Model(&reward.Reward{}).
				Where("id = ? AND stock > 0", rw.ID).
				UpdateColumn("stock", gorm.Expr("stock - 1"))
			if res.Error != nil {
				return errutil.Internal("failed to reserve stock", errutil.WithErr(res.Error))
			}
			if res.RowsAffected == 0 {
				return errutil.ConcurrencyConflict("reward stock changed, retry the redemption")
			}
		}

		r := &Redemption{
			ID:          s.node.Generate().String(),
			OwnerID:     sess.UserID,
			RewardID:    rw.ID,
			RewardTitle: rw.Title,
			PointsSpent: rw.PointsRequired,
			Status:      StatusPending,
		}

		redemptions := s.redemptions.WithTrx(tx)
		for attempt := 0; ; attempt++ {
			code, err := token.RandomCode(s.config.Points.CodeAlphabet, s.config.Points.CodeLength)
			if err != nil {
				return errutil.Internal("failed to generate redemption code", errutil.WithErr(err))
			}
			r.RedemptionCode = code

			// A unique-violation aborts the whole transaction on postgres,
			// so each attempt runs under a savepoint that a collision can
			// roll back to.
			if err := tx.SavePoint("redemption_code").Error; err != nil {
				return errutil.Internal("failed to create redemption", errutil.WithErr(err))
			}
			err = redemptions.Create(ctx, r)
			if err == nil {
				break
			}
			if !isDuplicateKey(err) || attempt+1 >= s.config.Points.CodeMaxRetry {
				return errutil.Internal("failed to create redemption", errutil.WithErr(err))
			}
			if err := tx.RollbackTo("redemption_code").Error; err != nil {
				return errutil.Internal("failed to create redemption", errutil.WithErr(err))
			}
		}

		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSnapshot(ctx, sess.UserID)

	return created, nil
}

// availablePoints re-derives the spendable balance inside the caller's
// transaction: verified disposal awards minus every redemption ever made,
// whatever its status.
func availablePoints(tx *gorm.DB, userID string) (int64, error) {
	var earned int64
	if err := tx.Model(&disposal.Disposal{}).
		Where("owner_id = ? AND status = ?", userID, disposal.StatusVerified).
		Select("COALESCE(SUM(points_earned), 0)").
		Scan(&earned).Error; err != nil {
		return 0, err
	}

	var spent int64
	if err := tx.Model(&Redemption{}).
		Where("owner_id = ?", userID).
		Select("COALESCE(SUM(points_spent), 0)").
		Scan(&spent).Error; err != nil {
		return 0, err
	}

	return earned - spent, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// ListMine returns the caller's redemptions, newest first.
func (s *Service) ListMine(ctx context.Context, sess identity.Session) ([]*Redemption, error) {
	out, err := s.redemptions.Find(ctx, &Redemption{OwnerID: sess.UserID},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "desc", Allow: map[string]bool{"created_at": true}}),
	)
	if err != nil {
		zap.L().Error("failed to list redemptions", zap.Error(err))
		return nil, errutil.Internal("failed to list redemptions", errutil.WithErr(err))
	}
	return out, nil
}

// AdminList returns all redemptions for fulfilment, newest first.
func (s *Service) AdminList(ctx context.Context, limit int) ([]*Redemption, error) {
	out, err := s.redemptions.Find(ctx, &Redemption{},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "desc", Allow: map[string]bool{"created_at": true}}),
		option.WithLimit(limit),
	)
	if err != nil {
		zap.L().Error("failed to list redemptions", zap.Error(err))
		return nil, errutil.Internal("failed to list redemptions", errutil.WithErr(err))
	}
	return out, nil
}

// UpdateStatus transitions a pending redemption to fulfilled or cancelled.
// Both targets are terminal. Cancellation does not restore points or stock;
// the spend stands.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status) (*Redemption, error) {
	if !next.Valid() || next == StatusPending {
		return nil, errutil.ValidationFailed("status must be fulfilled or cancelled",
			errutil.WithDetails(errutil.Detail{Field: "status", Message: "must be fulfilled or cancelled"}))
	}

	var updated *Redemption
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.redemptions.WithTrx(tx)

		r, err := repo.FindOne(ctx, &Redemption{ID: id}, option.WithLockingUpdate())
		if err != nil {
			return errutil.Internal("failed to load redemption", errutil.WithErr(err))
		}
		if r == nil {
			return errutil.NotFound("redemption not found")
		}
		if r.Status.Terminal() {
			return errutil.UnprocessableEntity("redemption status is final")
		}

		if err := repo.Update(ctx, id, map[string]any{"status": next}); err != nil {
			return errutil.Internal("failed to update redemption", errutil.WithErr(err))
		}

		r.Status = next
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *Service) invalidateSnapshot(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, rediskey.BuildLedgerSnapshotKey(userID)).Err(); err != nil {
		zap.L().Warn("failed to invalidate ledger snapshot", zap.String("user_id", userID), zap.Error(err))
	}
}
