package ledger

import (
	"context"
	"encoding/json"

	"oilcycle-platform/pkg/config"
	"oilcycle-platform/pkg/errutil"
	"oilcycle-platform/pkg/rediskey"
	"oilcycle-platform/pkg/repository"
	"oilcycle-platform/services/disposal"
	"oilcycle-platform/services/identity"
	"oilcycle-platform/services/redemption"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	config *config.Config
	cache  *redis.Client

	disposals   repository.Repository[disposal.Disposal]
	redemptions repository.Repository[redemption.Redemption]
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Config *config.Config
	Cache  *redis.Client `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		config:      p.Config,
		cache:       p.Cache,
		disposals:   repository.ProvideStore[disposal.Disposal](p.DB),
		redemptions: repository.ProvideStore[redemption.Redemption](p.DB),
	}
}

// GetSnapshot returns the caller's derived ledger. The snapshot is cached
// per user with a short TTL; writers invalidate the key explicitly, so the
// cache is only ever a stale read optimization, never a source of truth.
// Redemption re-derives the balance inside its own transaction and never
// reads this cache.
func (s *Service) GetSnapshot(ctx context.Context, sess identity.Session) (*Snapshot, error) {
	key := rediskey.BuildLedgerSnapshotKey(sess.UserID)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var snap Snapshot
			if err := json.Unmarshal(raw, &snap); err == nil {
				return &snap, nil
			}
		}
	}

	snap, err := s.compute(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(snap); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.config.Points.SnapshotTTL).Err(); err != nil {
				zap.L().Warn("failed to cache ledger snapshot", zap.String("user_id", sess.UserID), zap.Error(err))
			}
		}
	}

	return snap, nil
}

func (s *Service) compute(ctx context.Context, userID string) (*Snapshot, error) {
	disposals, err := s.disposals.Find(ctx, &disposal.Disposal{OwnerID: userID})
	if err != nil {
		zap.L().Error("failed to load disposals", zap.Error(err))
		return nil, errutil.Internal("failed to compute ledger", errutil.WithErr(err))
	}

	redemptions, err := s.redemptions.Find(ctx, &redemption.Redemption{OwnerID: userID})
	if err != nil {
		zap.L().Error("failed to load redemptions", zap.Error(err))
		return nil, errutil.Internal("failed to compute ledger", errutil.WithErr(err))
	}

	return &Snapshot{
		Earned:           ComputeEarned(disposals),
		Pending:          ComputePending(disposals),
		Spent:            ComputeSpent(redemptions),
		Available:        ComputeAvailable(disposals, redemptions),
		TotalVolumeLiter: ComputeTotalVolume(disposals),
		DisposalCount:    len(disposals),
	}, nil
}
