package wellness

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emberwell/pulsecheck-backend/internal/data/dataerr"
	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"github.com/emberwell/pulsecheck-backend/internal/platform/dbctx"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

type AnalysisRepo interface {
	Create(dbc dbctx.Context, analysis *types.BurnoutAnalysis) (*types.BurnoutAnalysis, error)
	GetByUserAndDate(dbc dbctx.Context, userID uuid.UUID, analysisDate time.Time) (*types.BurnoutAnalysis, error)
	GetLatest(dbc dbctx.Context, userID uuid.UUID) (*types.BurnoutAnalysis, error)
	ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.BurnoutAnalysis, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type analysisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) AnalysisRepo {
	return &analysisRepo{db: db, log: baseLog.With("repo", "AnalysisRepo")}
}

// DateOnly strips the time-of-day so rows line up with the DATE column
// regardless of the caller's clock or zone.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r *analysisRepo) Create(dbc dbctx.Context, analysis *types.BurnoutAnalysis) (*types.BurnoutAnalysis, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if analysis == nil {
		return nil, dataerr.ValidationError("analysis is nil")
	}
	if analysis.UserID == uuid.Nil {
		return nil, dataerr.ValidationError("analysis user id is required")
	}
	analysis.AnalysisDate = DateOnly(analysis.AnalysisDate)
	if err := transaction.WithContext(dbc.Ctx).Create(analysis).Error; err != nil {
		return nil, dataerr.MapError("wellness.CreateAnalysis", err)
	}
	return analysis, nil
}

func (r *analysisRepo) GetByUserAndDate(dbc dbctx.Context, userID uuid.UUID, analysisDate time.Time) (*types.BurnoutAnalysis, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, dataerr.ValidationError("user id is required")
	}
	var row types.BurnoutAnalysis
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND analysis_date = ?", userID, DateOnly(analysisDate)).
		First(&row).Error; err != nil {
		return nil, dataerr.MapError("wellness.GetAnalysisByUserAndDate", err)
	}
	return &row, nil
}

// GetLatest returns the newest analysis for the user. No history yet
// surfaces as ErrNotFound, same as every other single-row read.
func (r *analysisRepo) GetLatest(dbc dbctx.Context, userID uuid.UUID) (*types.BurnoutAnalysis, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, dataerr.ValidationError("user id is required")
	}
	var row types.BurnoutAnalysis
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("analysis_date DESC").
		First(&row).Error; err != nil {
		return nil, dataerr.MapError("wellness.GetLatestAnalysis", err)
	}
	return &row, nil
}

func (r *analysisRepo) ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.BurnoutAnalysis, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, dataerr.ValidationError("user id is required")
	}
	if limit <= 0 {
		limit = 30
	}
	var rows []*types.BurnoutAnalysis
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("analysis_date DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, dataerr.MapError("wellness.ListRecentAnalyses", err)
	}
	return rows, nil
}

func (r *analysisRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return 0, dataerr.ValidationError("user id is required")
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.BurnoutAnalysis{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, dataerr.MapError("wellness.CountAnalysesByUser", err)
	}
	return count, nil
}
