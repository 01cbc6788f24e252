package identity

import (
	"context"
	"strings"

	"oilcycle-platform/pkg/errutil"
	"oilcycle-platform/pkg/repository"
	"oilcycle-platform/pkg/token"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	users repository.Repository[User]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:    p.DB,
		node:  p.Node,
		users: repository.ProvideStore[User](p.DB),
	}
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type RegisterResponse struct {
	User     *User  `json:"user"`
	APIToken string `json:"api_token"`
}

// Register creates a user account with a fresh bearer token. Role is always
// "user"; admin accounts are provisioned out of band.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errutil.ValidationFailed("a valid email is required",
			errutil.WithDetails(errutil.Detail{Field: "email", Message: "required"}))
	}

	if exist, err := s.users.FindOne(ctx, &User{Email: email}); err != nil {
		zap.L().Error("failed to query user by email", zap.Error(err))
		return nil, errutil.Internal("failed to register user", errutil.WithErr(err))
	} else if exist != nil {
		return nil, errutil.Conflict("email already registered")
	}

	user := &User{
		ID:          s.node.Generate().String(),
		Email:       email,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Role:        RoleUser,
		APIToken:    token.NewAPIToken(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		zap.L().Error("failed to create user", zap.Error(err))
		return nil, errutil.Internal("failed to register user", errutil.WithErr(err))
	}

	return &RegisterResponse{User: user, APIToken: user.APIToken}, nil
}

// Resolve maps a bearer token to a session. An unknown token is an
// authentication failure, not an internal error.
func (s *Service) Resolve(ctx context.Context, bearer string) (*Session, error) {
	if bearer == "" {
		return nil, errutil.Unauthorized("missing bearer token")
	}

	user, err := s.users.FindOne(ctx, &User{APIToken: bearer})
	if err != nil {
		zap.L().Error("failed to resolve session", zap.Error(err))
		return nil, errutil.Internal("failed to resolve session", errutil.WithErr(err))
	}
	if user == nil {
		return nil, errutil.Unauthorized("invalid bearer token")
	}

	return &Session{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}, nil
}

func (s *Service) Me(ctx context.Context, sess Session) (*User, error) {
	user, err := s.users.FindOne(ctx, &User{ID: sess.UserID})
	if err != nil {
		return nil, errutil.Internal("failed to load user", errutil.WithErr(err))
	}
	if user == nil {
		return nil, errutil.NotFound("user not found")
	}
	return user, nil
}
