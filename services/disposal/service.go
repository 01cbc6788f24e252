package disposal

import (
	"context"
	"strings"

	"oilcycle-platform/pkg/config"
	"oilcycle-platform/pkg/db/option"
	"oilcycle-platform/pkg/errutil"
	"oilcycle-platform/pkg/rediskey"
	"oilcycle-platform/pkg/repository"
	"oilcycle-platform/services/center"
	"oilcycle-platform/services/identity"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var minQuantity = decimal.NewFromFloat(0.1)

type Service struct {
	db     *gorm.DB
	node   *snowflake.Node
	config *config.Config
	cache  *redis.Client

	centers   *center.Service
	disposals repository.Repository[Disposal]
}

type ServiceParams struct {
	fx.In
	DB      *gorm.DB
	Node    *snowflake.Node
	Config  *config.Config
	Cache   *redis.Client `optional:"true"`
	Centers *center.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:        p.DB,
		node:      p.Node,
		config:    p.Config,
		cache:     p.Cache,
		centers:   p.Centers,
		disposals: repository.ProvideStore[Disposal](p.DB),
	}
}

type SubmitRequest struct {
	QuantityLiters decimal.Decimal `json:"quantity_liters"`
	OilType        OilType         `json:"oil_type"`
	CenterID       string          `json:"disposal_center_id"`
	Notes          string          `json:"notes"`
	PhotoURL       string          `json:"photo_url"`
}

// AwardPoints computes the fixed point award for a submission:
// round-half-up(quantity * rate(oil_type)). The result is baked into the
// record and never recomputed.
func AwardPoints(quantity decimal.Decimal, rate int64) int64 {
	return quantity.Mul(decimal.NewFromInt(rate)).Round(0).IntPart()
}

// Submit validates the submission and creates a pending disposal record.
// All validation happens before the single write; there is no partial state
// to clean up on failure.
func (s *Service) Submit(ctx context.Context, sess identity.Session, req SubmitRequest) (*Disposal, error) {
	var details []errutil.Detail
	if req.QuantityLiters.LessThan(minQuantity) {
		details = append(details, errutil.Detail{Field: "quantity_liters", Message: "must be at least 0.1"})
	}
	if !req.OilType.Valid() {
		details = append(details, errutil.Detail{Field: "oil_type", Message: "unknown oil type"})
	}
	if strings.TrimSpace(req.CenterID) == "" {
		details = append(details, errutil.Detail{Field: "disposal_center_id", Message: "required"})
	}
	if len(details) > 0 {
		return nil, errutil.ValidationFailed("invalid disposal submission", errutil.WithDetails(details...))
	}

	ctr, err := s.centers.GetActive(ctx, req.CenterID)
	if err != nil {
		return nil, err
	}

	d := &Disposal{
		ID:             s.node.Generate().String(),
		OwnerID:        sess.UserID,
		QuantityLiters: req.QuantityLiters,
		OilType:        req.OilType,
		CenterID:       ctr.ID,
		CenterName:     ctr.Name,
		Status:         StatusPending,
		PointsEarned:   AwardPoints(req.QuantityLiters, s.config.BaseRate(string(req.OilType))),
		Notes:          req.Notes,
		PhotoURL:       req.PhotoURL,
	}

	if err := s.disposals.Create(ctx, d); err != nil {
		zap.L().Error("failed to create disposal", zap.Error(err))
		return nil, errutil.Internal("failed to log disposal", errutil.WithErr(err))
	}

	s.invalidateSnapshot(ctx, sess.UserID)

	return d, nil
}

// ListMine returns the caller's disposals, newest first.
func (s *Service) ListMine(ctx context.Context, sess identity.Session) ([]*Disposal, error) {
	out, err := s.disposals.Find(ctx, &Disposal{OwnerID: sess.UserID},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "desc", Allow: map[string]bool{"created_at": true}}),
	)
	if err != nil {
		zap.L().Error("failed to list disposals", zap.Error(err))
		return nil, errutil.Internal("failed to list disposals", errutil.WithErr(err))
	}
	return out, nil
}

// AdminList returns all disposals for review, newest first.
func (s *Service) AdminList(ctx context.Context, limit int) ([]*Disposal, error) {
	out, err := s.disposals.Find(ctx, &Disposal{},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "desc", Allow: map[string]bool{"created_at": true}}),
		option.WithLimit(limit),
	)
	if err != nil {
		zap.L().Error("failed to list disposals", zap.Error(err))
		return nil, errutil.Internal("failed to list disposals", errutil.WithErr(err))
	}
	return out, nil
}

// UpdateStatus transitions a pending disposal to verified or rejected.
// Both target states are terminal and the stored point award is never
// touched; verification only changes which bucket the award is summed in.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status) (*Disposal, error) {
	if !next.Valid() || next == StatusPending {
		return nil, errutil.ValidationFailed("status must be verified or rejected",
			errutil.WithDetails(errutil.Detail{Field: "status", Message: "must be verified or rejected"}))
	}

	var updated *Disposal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.disposals.WithTrx(tx)

		d, err := repo.FindOne(ctx, &Disposal{ID: id}, option.WithLockingUpdate())
		if err != nil {
			return errutil.Internal("failed to load disposal", errutil.WithErr(err))
		}
		if d == nil {
			return errutil.NotFound("disposal not found")
		}
		if d.Status.Terminal() {
			return errutil.UnprocessableEntity("disposal status is final")
		}

		if err := repo.Update(ctx, id, map[string]any{"status": next}); err != nil {
			return errutil.Internal("failed to update disposal", errutil.WithErr(err))
		}

		d.Status = next
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSnapshot(ctx, updated.OwnerID)

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
