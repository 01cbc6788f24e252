package center

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

	centers repository.Repository[DisposalCenter]
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
		centers: repository.ProvideStore[DisposalCenter](p.DB),
	}
}

// ListActive returns active centers, optionally filtered by a case-insensitive
// substring match over name and address.
func (s *Service) ListActive(ctx context.Context, search string) ([]*DisposalCenter, error) {
	query := s.db.WithContext(ctx).Where("is_active = ?", true)
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", like, like)
	}

	var centers []*DisposalCenter
	if err := query.Order("name ASC").Find(&centers).Error; err != nil {
		zap.L().Error("failed to list centers", zap.Error(err))
		return nil, errutil.Internal("failed to list centers", errutil.WithErr(err))
	}
	return centers, nil
}

// GetActive loads one center and requires it to be active. Used by disposal
// submission to validate the referenced center before any write.
func (s *Service) GetActive(ctx context.Context, id string) (*DisposalCenter, error) {
	c, err := s.centers.FindOne(ctx, &DisposalCenter{ID: id})
	if err != nil {
		return nil, errutil.Internal("failed to load center", errutil.WithErr(err))
	}
	if c == nil || !c.IsActive {
		return nil, errutil.ValidationFailed("disposal center not found or inactive",
			errutil.WithDetails(errutil.Detail{Field: "disposal_center_id", Message: "must reference an active center"}))
	}
	return c, nil
}

type UpsertRequest struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	OperatingHours string   `json:"operating_hours"`
	Phone          string   `json:"phone"`
	AcceptsTypes   string   `json:"accepts_types"`
	IsActive       *bool    `json:"is_active"`
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (*DisposalCenter, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errutil.ValidationFailed("name is required",
			errutil.WithDetails(errutil.Detail{Field: "name", Message: "required"}))
	}

	c := &DisposalCenter{
		ID:             s.node.Generate().String(),
		Name:           strings.TrimSpace(req.Name),
		Address:        req.Address,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		OperatingHours: req.OperatingHours,
		Phone:          req.Phone,
		AcceptsTypes:   req.AcceptsTypes,
		IsActive:       true,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.centers.Create(ctx, c); err != nil {
		zap.L().Error("failed to create center", zap.Error(err))
		return nil, errutil.Internal("failed to create center", errutil.WithErr(err))
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (*DisposalCenter, error) {
	exist, err := s.centers.FindOne(ctx, &DisposalCenter{ID: id})
	if err != nil {
		return nil, errutil.Internal("failed to load center", errutil.WithErr(err))
	}
	if exist == nil {
		return nil, errutil.NotFound("center not found")
	}

	updates := map[string]any{}
	if strings.TrimSpace(req.Name) != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.OperatingHours != "" {
		updates["operating_hours"] = req.OperatingHours
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.AcceptsTypes != "" {
		updates["accepts_types"] = req.AcceptsTypes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.centers.Update(ctx, id, updates); err != nil {
			zap.L().Error("failed to update center", zap.Error(err))
			return nil, errutil.Internal("failed to update center", errutil.WithErr(err))
		}
	}

	return s.centers.FindOne(ctx, &DisposalCenter{ID: id})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	exist, err := s.centers.FindOne(ctx, &DisposalCenter{ID: id})
	if err != nil {
		return errutil.Internal("failed to load center", errutil.WithErr(err))
	}
	if exist == nil {
		return errutil.NotFound("center not found")
	}
	if err := s.centers.Delete(ctx, id); err != nil {
		return errutil.Internal("failed to delete center", errutil.WithErr(err))
	}
	return nil
}
