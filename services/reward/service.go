package reward

import (
	"context"
	"strings"

	"oilcycle-platform/pkg/errutil"
	"oilcycle-platform/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	rewards repository.Repository[Reward]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:      p.DB,
		node:    p.Node,
		rewards: repository.ProvideStore[Reward](p.DB),
	}
}

// ListActive returns active rewards, optionally restricted to one category.
func (s *Service) ListActive(ctx context.Context, category Category) ([]*Reward, error) {
	query := s.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		if !category.Valid() {
			return nil, errutil.ValidationFailed("unknown reward category",
				errutil.WithDetails(errutil.Detail{Field: "category", Message: "unknown category"}))
		}
		query = query.Where("category = ?", category)
	}

	var rewards []*Reward
	if err := query.Order("points_required ASC").Find(&rewards).Error; err != nil {
		zap.L().Error("failed to list rewards", zap.Error(err))
		return nil, errutil.Internal("failed to list rewards", errutil.WithErr(err))
	}
	return rewards, nil
}

type UpsertRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	PointsRequired int64    `json:"points_required"`
	Category       Category `json:"category"`
	ImageURL       string   `json:"image_url"`
	Stock          *int64   `json:"stock"`
	IsActive       *bool    `json:"is_active"`
}

func (r UpsertRequest) validate() error {
	var details []errutil.Detail
	if strings.TrimSpace(r.Title) == "" {
		details = append(details, errutil.Detail{Field: "title", Message: "required"})
	}
	if r.PointsRequired <= 0 {
		details = append(details, errutil.Detail{Field: "points_required", Message: "must be positive"})
	}
	if !r.Category.Valid() {
		details = append(details, errutil.Detail{Field: "category", Message: "unknown category"})
	}
	if r.Stock != nil && *r.Stock < 0 {
		details = append(details, errutil.Detail{Field: "stock", Message: "must not be negative"})
	}
	if len(details) > 0 {
		return errutil.ValidationFailed("invalid reward", errutil.WithDetails(details...))
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (*Reward, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	r := &Reward{
		ID:             s.node.Generate().String(),
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		PointsRequired: req.PointsRequired,
		Category:       req.Category,
		ImageURL:       req.ImageURL,
		Stock:          req.Stock,
		IsActive:       true,
	}
	if req.IsActive != nil {
		r.IsActive = *req.IsActive
	}

	if err := s.rewards.Create(ctx, r); err != nil {
		zap.L().Error("failed to create reward", zap.Error(err))
		return nil, errutil.Internal("failed to create reward", errutil.WithErr(err))
	}
	return r, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (*Reward, error) {
	exist, err := s.rewards.FindOne(ctx, &Reward{ID: id})
	if err != nil {
		return nil, errutil.Internal("failed to load reward", errutil.WithErr(err))
	}
	if exist == nil {
		return nil, errutil.NotFound("reward not found")
	}

	updates := map[string]any{}
	if strings.TrimSpace(req.Title) != "" {
		updates["title"] = strings.TrimSpace(req.Title)
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.PointsRequired > 0 {
		updates["points_required"] = req.PointsRequired
	}
	if req.Category != "" {
		if !req.Category.Valid() {
			return nil, errutil.ValidationFailed("unknown reward category",
				errutil.WithDetails(errutil.Detail{Field: "category", Message: "unknown category"}))
		}
		updates["category"] = req.Category
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, errutil.ValidationFailed("stock must not be negative",
				errutil.WithDetails(errutil.Detail{Field: "stock", Message: "must not be negative"}))
		}
		updates["stock"] = *req.Stock
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.rewards.Update(ctx, id, updates); err != nil {
			zap.L().Error("failed to update reward", zap.Error(err))
			return nil, errutil.Internal("failed to update reward", errutil.WithErr(err))
		}
	}

	return s.rewards.FindOne(ctx, &Reward{ID: id})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	exist, err := s.rewards.FindOne(ctx, &Reward{ID: id})
	if err != nil {
		return errutil.Internal("failed to load reward", errutil.WithErr(err))
	}
	if exist == nil {
		return errutil.NotFound("reward not found")
	}
	if err := s.rewards.Delete(ctx, id); err != nil {
		return errutil.Internal("failed to delete reward", errutil.WithErr(err))
	}
	return nil
}
