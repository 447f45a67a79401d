package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/emberwell/pulsecheck-backend/internal/data/dataerr"
	"github.com/emberwell/pulsecheck-backend/internal/data/repos"
	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"github.com/emberwell/pulsecheck-backend/internal/platform/dbctx"
	"github.com/emberwell/pulsecheck-backend/internal/platform/envutil"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

// HistoryService reads stored assessment days back out, newest first.
type HistoryService interface {
	ListAnalyses(ctx context.Context, userID uuid.UUID, limit int) ([]*types.BurnoutAnalysis, error)
	Latest(ctx context.Context, userID uuid.UUID) (*types.BurnoutAnalysis, error)
}

type historyService struct {
	log      *logger.Logger
	analyses repos.AnalysisRepo

	defaultLimit int
	maxLimit     int
}

func NewHistoryService(log *logger.Logger, analyses repos.AnalysisRepo) HistoryService {
	return &historyService{
		log:          log.With("service", "HistoryService"),
		analyses:     analyses,
		defaultLimit: envutil.Int("HISTORY_DEFAULT_LIMIT", 30),
		maxLimit:     envutil.Int("HISTORY_MAX_LIMIT", 180),
	}
}

func (s *historyService) ListAnalyses(ctx context.Context, userID uuid.UUID, limit int) ([]*types.BurnoutAnalysis, error) {
	if userID == uuid.Nil {
		return nil, dataerr.ValidationError("user id is required")
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	return s.analyses.ListRecent(dbctx.Context{Ctx: ctx}, userID, limit)
}

func (s *historyService) Latest(ctx context.Context, userID uuid.UUID) (*types.BurnoutAnalysis, error) {
	if userID == uuid.Nil {
		return nil, dataerr.ValidationError("user id is required")
	}
	return s.analyses.GetLatest(dbctx.Context{Ctx: ctx}, userID)
}
