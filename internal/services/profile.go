package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/emberwell/pulsecheck-backend/internal/data/dataerr"
	"github.com/emberwell/pulsecheck-backend/internal/data/repos"
	"github.com/emberwell/pulsecheck-backend/internal/data/repos/wellness"
	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"github.com/emberwell/pulsecheck-backend/internal/platform/dbctx"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

// ProfileService exposes the learned behavioral profile and tracks what
// happened to the recommendations built from it.
type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.BehavioralProfile, error)
	// RecordRecommendationEvent bumps one of the received/accepted/
	// completed counters on the user's profile.
	RecordRecommendationEvent(ctx context.Context, userID uuid.UUID, kind string) (*types.BehavioralProfile, error)
}

type profileService struct {
	log      *logger.Logger
	profiles repos.ProfileRepo
}

func NewProfileService(log *logger.Logger, profiles repos.ProfileRepo) ProfileService {
	return &profileService{
		log:      log.With("service", "ProfileService"),
		profiles: profiles,
	}
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*types.BehavioralProfile, error) {
	if userID == uuid.Nil {
		return nil, dataerr.ValidationError("user id is required")
	}
	return s.profiles.GetByUser(dbctx.Context{Ctx: ctx}, userID)
}

func (s *profileService) RecordRecommendationEvent(ctx context.Context, userID uuid.UUID, kind string) (*types.BehavioralProfile, error) {
	if userID == uuid.Nil {
		return nil, dataerr.ValidationError("user id is required")
	}
	switch kind {
	case wellness.RecommendationReceived, wellness.RecommendationAccepted, wellness.RecommendationCompleted:
	default:
		return nil, dataerr.ValidationError("unknown recommendation event kind")
	}

	dbc := dbctx.Context{Ctx: ctx}
	bumped, err := s.profiles.IncrementRecommendationCounter(dbc, userID, kind)
	if err != nil {
		return nil, err
	}
	if !bumped {
		return nil, dataerr.NotFoundError("no behavioral profile for user yet")
	}
	s.log.Debug("Recommendation event recorded", "user_id", userID, "kind", kind)
	return s.profiles.GetByUser(dbc, userID)
}
