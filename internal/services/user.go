package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/emberwell/pulsecheck-backend/internal/data/dataerr"
	"github.com/emberwell/pulsecheck-backend/internal/data/repos"
	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"github.com/emberwell/pulsecheck-backend/internal/platform/dbctx"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

// UserService manages the identity anchor rows. Auth and account
// management live in a separate system; this service only needs a stable
// id to hang assessments off.
type UserService interface {
	Register(ctx context.Context, email, displayName string) (*types.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
}

type userService struct {
	log   *logger.Logger
	users repos.UserRepo
}

func NewUserService(log *logger.Logger, users repos.UserRepo) UserService {
	return &userService{
		log:   log.With("service", "UserService"),
		users: users,
	}
}

func (s *userService) Register(ctx context.Context, email, displayName string) (*types.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, dataerr.ValidationError("valid email is required")
	}
	displayName = strings.TrimSpace(displayName)

	dbc := dbctx.Context{Ctx: ctx}
	u := &types.User{
		Email:       email,
		DisplayName: displayName,
	}
	created, err := s.users.Create(dbc, u)
	if err != nil {
		return nil, err
	}
	s.log.Info("User registered", "user_id", created.ID, "email", created.Email)
	return created, nil
}

func (s *userService) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, dataerr.ValidationError("user id is required")
	}
	return s.users.GetByID(dbctx.Context{Ctx: ctx}, userID)
}
