package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/emberwell/pulsecheck-backend/internal/burnout"
	"github.com/emberwell/pulsecheck-backend/internal/data/dataerr"
	"github.com/emberwell/pulsecheck-backend/internal/data/repos"
	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"github.com/emberwell/pulsecheck-backend/internal/jobs"
	"github.com/emberwell/pulsecheck-backend/internal/observability"
	"github.com/emberwell/pulsecheck-backend/internal/platform/dbctx"
	"github.com/emberwell/pulsecheck-backend/internal/platform/envutil"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

/*
LearningService reruns the pattern learner over a user's stored analysis
history and persists the result to their behavioral profile. Both the
daily assessment flow and the profile_relearn job funnel through
RelearnProfile, so the decode/learn/merge/upsert sequence exists exactly
once.
*/
type LearningService interface {
	// RelearnProfile reads the recent history window, mines it, and
	// upserts the profile. Returns the learned patterns and whether the
	// profile row was written; (nil, false, nil) means not enough usable
	// history yet.
	RelearnProfile(ctx context.Context, userID uuid.UUID) (*burnout.LearnedPatterns, bool, error)
	// EnqueueRelearn queues a profile_relearn job unless one is already
	// pending for this user.
	EnqueueRelearn(ctx context.Context, userID uuid.UUID) (bool, error)
}

type learningService struct {
	log      *logger.Logger
	analyses repos.AnalysisRepo
	profiles repos.ProfileRepo
	enqueuer *jobs.Enqueuer

	cfg            burnout.LearnConfig
	windowDays     int
	driftThreshold float64
}

func NewLearningService(log *logger.Logger, analyses repos.AnalysisRepo, profiles repos.ProfileRepo, enqueuer *jobs.Enqueuer) LearningService {
	return &learningService{
		log:      log.With("service", "LearningService"),
		analyses: analyses,
		profiles: profiles,
		enqueuer: enqueuer,
		cfg: burnout.LearnConfig{
			MinDays:          envutil.Int("LEARNING_MIN_DAYS", 7),
			MinSubsetSamples: envutil.Int("LEARNING_MIN_SUBSET", 3),
			RelativeIncrease: envutil.Float64("LEARNING_RELATIVE_INCREASE", 0.5),
		},
		windowDays:     envutil.Int("LEARNING_WINDOW_DAYS", 30),
		driftThreshold: envutil.Float64("BASELINE_DRIFT_THRESHOLD", 20),
	}
}

func (s *learningService) RelearnProfile(ctx context.Context, userID uuid.UUID) (*burnout.LearnedPatterns, bool, error) {
	if userID == uuid.Nil {
		return nil, false, dataerr.ValidationError("user id is required")
	}
	dbc := dbctx.Context{Ctx: ctx}

	count, err := s.analyses.CountByUser(dbc, userID)
	if err != nil {
		observability.Current().IncLearnerRun("failed")
		return nil, false, err
	}
	if count < int64(s.cfg.MinDays) {
		s.log.Debug("Not enough history to learn from", "user_id", userID, "days", count, "min_days", s.cfg.MinDays)
		observability.Current().IncLearnerRun("skipped")
		return nil, false, nil
	}

	rows, err := s.analyses.ListRecent(dbc, userID, s.windowDays)
	if err != nil {
		observability.Current().IncLearnerRun("failed")
		return nil, false, err
	}

	records, corruptIDs := historyRecords(rows)
	if len(corruptIDs) > 0 {
		s.log.Warn("Skipping corrupt history rows", "user_id", userID, "count", len(corruptIDs))
		observability.ReportCorruptRecords(ctx, s.log, "learning.history", corruptIDs, map[string]any{
			"user_id": userID.String(),
		})
	}

	patterns := burnout.LearnPatterns(records, s.cfg)
	if patterns == nil {
		s.log.Debug("History window too thin after skipping corrupt rows", "user_id", userID, "valid_days", len(records))
		observability.Current().IncLearnerRun("skipped")
		return nil, false, nil
	}

	existing, err := s.profiles.GetByUser(dbc, userID)
	if err != nil && !errors.Is(err, dataerr.ErrNotFound) {
		observability.Current().IncLearnerRun("failed")
		return nil, false, err
	}

	merged := patterns.StressTriggers
	if existing != nil {
		merged = burnout.MergeTriggers(decodeTriggers(existing.StressTriggers), patterns.StressTriggers)
	}
	triggersJSON, err := json.Marshal(merged)
	if err != nil {
		observability.Current().IncLearnerRun("failed")
		return nil, false, fmt.Errorf("encode stress triggers: %w", err)
	}

	profile := &types.BehavioralProfile{
		UserID:         userID,
		BaselineScore:  patterns.BaselineScore,
		BaselineSource: patterns.BaselineSource,
		AvgTasksPerDay: patterns.AvgTasksPerDay,
		AvgHoursPerDay: patterns.AvgHoursPerDay,
		StressTriggers: datatypes.JSON(triggersJSON),
		SampleDays:     patterns.SampleDays,
	}
	if _, err := s.profiles.Upsert(dbc, profile); err != nil {
		observability.Current().IncLearnerRun("failed")
		return nil, false, err
	}

	s.reportBaselineDrift(ctx, userID, existing, patterns)

	observability.Current().IncLearnerRun("succeeded")
	observability.Current().IncProfileUpdate()
	s.log.Info("Profile relearned",
		"user_id", userID,
		"baseline", patterns.BaselineScore,
		"baseline_source", patterns.BaselineSource,
		"sample_days", patterns.SampleDays,
		"triggers", len(merged),
	)
	return patterns, true, nil
}

func (s *learningService) EnqueueRelearn(ctx context.Context, userID uuid.UUID) (bool, error) {
	if s.enqueuer == nil {
		return false, nil
	}
	_, ok, err := s.enqueuer.EnqueueProfileRelearn(ctx, userID)
	return ok, err
}

// reportBaselineDrift alerts when a relearn moves the stored baseline by
// more than the configured threshold. A jump that size usually means
// corrupted history rows or a scoring regression upstream, not a real
// behavior change.
func (s *learningService) reportBaselineDrift(ctx context.Context, userID uuid.UUID, existing *types.BehavioralProfile, patterns *burnout.LearnedPatterns) {
	if existing == nil || existing.SampleDays == 0 || s.driftThreshold <= 0 {
		return
	}
	drift := math.Abs(patterns.BaselineScore - existing.BaselineScore)
	if drift < s.driftThreshold {
		return
	}
	observability.ReportBaselineDrift(ctx, s.log, []observability.BaselineDriftMetric{{
		Name:      "baseline_score",
		Status:    "jump",
		Value:     drift,
		Threshold: s.driftThreshold,
		Meta: map[string]any{
			"previous_baseline": existing.BaselineScore,
			"new_baseline":      patterns.BaselineScore,
			"baseline_source":   patterns.BaselineSource,
		},
	}}, map[string]any{
		"user_id": userID.String(),
	})
}

// historyRecords decodes stored analysis rows into learner input, returning
// the ids of rows whose metrics or level no longer parse. Corrupt rows are
// skipped, never fatal: one bad row must not stall learning forever.
func historyRecords(rows []*types.BurnoutAnalysis) ([]burnout.HistoryRecord, []string) {
	records := make([]burnout.HistoryRecord, 0, len(rows))
	var corrupt []string
	for _, row := range rows {
		if row == nil {
			continue
		}
		level, err := burnout.ParseLevel(row.Level)
		if err != nil {
			corrupt = append(corrupt, row.ID.String())
			continue
		}
		if len(row.Metrics) == 0 {
			corrupt = append(corrupt, row.ID.String())
			continue
		}
		var m burnout.UserMetrics
		if err := json.Unmarshal(row.Metrics, &m); err != nil {
			corrupt = append(corrupt, row.ID.String())
			continue
		}
		records = append(records, burnout.HistoryRecord{
			AnalysisDate: row.AnalysisDate,
			FinalScore:   row.FinalScore,
			Level:        level,
			Metrics:      m,
		})
	}
	return records, corrupt
}

// decodeTriggers reads the stored trigger list; undecodable history is
// treated as empty so a fresh learn can overwrite it.
func decodeTriggers(raw datatypes.JSON) []burnout.StressTrigger {
	if len(raw) == 0 {
		return nil
	}
	var triggers []burnout.StressTrigger
	if err := json.Unmarshal(raw, &triggers); err != nil {
		return nil
	}
	return triggers
}
