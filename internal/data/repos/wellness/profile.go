package wellness

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emberwell/pulsecheck-backend/internal/data/dataerr"
	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"github.com/emberwell/pulsecheck-backend/internal/platform/dbctx"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

// Recommendation counter names accepted by IncrementRecommendationCounter.
const (
	RecommendationReceived  = "received"
	RecommendationAccepted  = "accepted"
	RecommendationCompleted = "completed"
)

var recommendationColumns = map[string]string{
	RecommendationReceived:  "recommendations_received",
	RecommendationAccepted:  "recommendations_accepted",
	RecommendationCompleted: "recommendations_completed",
}

type ProfileRepo interface {
	GetByUser(dbc dbctx.Context, userID uuid.UUID) (*types.BehavioralProfile, error)
	Upsert(dbc dbctx.Context, profile *types.BehavioralProfile) (*types.BehavioralProfile, error)
	IncrementRecommendationCounter(dbc dbctx.Context, userID uuid.UUID, counter string) (bool, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) GetByUser(dbc dbctx.Context, userID uuid.UUID) (*types.BehavioralProfile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, dataerr.ValidationError("user id is required")
	}
	var row types.BehavioralProfile
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		First(&row).Error; err != nil {
		return nil, dataerr.MapError("wellness.GetProfileByUser", err)
	}
	return &row, nil
}

// Upsert inserts the learned profile or replaces the learned columns of an
// existing row. Recommendation counters are deliberately left out of the
// conflict update so learner reruns never reset them.
func (r *profileRepo) Upsert(dbc dbctx.Context, profile *types.BehavioralProfile) (*types.BehavioralProfile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if profile == nil {
		return nil, dataerr.ValidationError("profile is nil")
	}
	if profile.UserID == uuid.Nil {
		return nil, dataerr.ValidationError("profile user id is required")
	}
	profile.UpdatedAt = time.Now()
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"baseline_score",
				"baseline_source",
				"avg_tasks_per_day",
				"avg_hours_per_day",
				"stress_triggers",
				"sample_days",
				"updated_at",
			}),
		}).
		Create(profile).Error; err != nil {
		return nil, dataerr.MapError("wellness.UpsertProfile", err)
	}
	return profile, nil
}

func (r *profileRepo) IncrementRecommendationCounter(dbc dbctx.Context, userID uuid.UUID, counter string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return false, dataerr.ValidationError("user id is required")
	}
	column, ok := recommendationColumns[counter]
	if !ok {
		return false, dataerr.ValidationError("unknown recommendation counter: " + counter)
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.BehavioralProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			column:       gorm.Expr(column+" + ?", 1),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, dataerr.MapError("wellness.IncrementRecommendationCounter", res.Error)
	}
	return res.RowsAffected > 0, nil
}
