package user

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emberwell/pulsecheck-backend/internal/data/dataerr"
	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"github.com/emberwell/pulsecheck-backend/internal/platform/dbctx"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, u *types.User) (*types.User, error)
	GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, u *types.User) (*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if u == nil {
		return nil, dataerr.ValidationError("user is nil")
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email == "" {
		return nil, dataerr.ValidationError("email is required")
	}
	if err := transaction.WithContext(dbc.Ctx).Create(u).Error; err != nil {
		return nil, dataerr.MapError("user.Create", err)
	}
	return u, nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, dataerr.ValidationError("user id is required")
	}
	var u types.User
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", userID).
		First(&u).Error; err != nil {
		return nil, dataerr.MapError("user.GetByID", err)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, dataerr.ValidationError("email is required")
	}
	var u types.User
	if err := transaction.WithContext(dbc.Ctx).
		Where("email = ?", email).
		First(&u).Error; err != nil {
		return nil, dataerr.MapError("user.GetByEmail", err)
	}
	return &u, nil
}

func (r *userRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, dataerr.MapError("user.EmailExists", err)
	}
	return count > 0, nil
}
