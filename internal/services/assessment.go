package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/emberwell/pulsecheck-backend/internal/burnout"
	kafkaclient "github.com/emberwell/pulsecheck-backend/internal/clients/kafka"
	redisclient "github.com/emberwell/pulsecheck-backend/internal/clients/redis"
	"github.com/emberwell/pulsecheck-backend/internal/data/dataerr"
	"github.com/emberwell/pulsecheck-backend/internal/data/repos"
	"github.com/emberwell/pulsecheck-backend/internal/data/repos/wellness"
	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"github.com/emberwell/pulsecheck-backend/internal/observability"
	"github.com/emberwell/pulsecheck-backend/internal/platform/dbctx"
	"github.com/emberwell/pulsecheck-backend/internal/platform/envutil"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
	"github.com/emberwell/pulsecheck-backend/internal/platform/userlock"
)

// How long the cross-instance Redis guard may outlive a crashed holder.
const assessLockTTL = 30 * time.Second

type RunInput struct {
	UserID      uuid.UUID
	Date        time.Time
	Metrics     burnout.UserMetrics
	Qualitative burnout.QualitativeInput
}

// DailyAssessment is the combined result of one assessment run: the
// persisted day plus whatever the learning pass produced.
type DailyAssessment struct {
	Analysis       *types.BurnoutAnalysis   `json:"analysis"`
	Patterns       *burnout.LearnedPatterns `json:"patterns,omitempty"`
	ProfileUpdated bool                     `json:"profile_updated"`
}

/*
AssessmentService runs the daily flow end to end: serialize per user,
score workload, gather sentiment and the previous day in parallel, fuse,
persist append-only, relearn the profile, then fan out best-effort side
effects. Reruns for an already-assessed date resume idempotently from the
stored row.
*/
type AssessmentService interface {
	RunDailyAssessment(ctx context.Context, in RunInput) (*DailyAssessment, error)
}

type assessmentService struct {
	log      *logger.Logger
	users    repos.UserRepo
	analyses repos.AnalysisRepo
	learning LearningService
	provider burnout.SentimentProvider
	locks    *userlock.KeyedMutex
	events   redisclient.Client         // optional, nil without REDIS_ADDR
	alerts   kafkaclient.AlertPublisher // NoopAlertPublisher without brokers

	sentimentTimeout time.Duration
}

func NewAssessmentService(
	log *logger.Logger,
	users repos.UserRepo,
	analyses repos.AnalysisRepo,
	learning LearningService,
	provider burnout.SentimentProvider,
	locks *userlock.KeyedMutex,
	events redisclient.Client,
	alerts kafkaclient.AlertPublisher,
) AssessmentService {
	return &assessmentService{
		log:              log.With("service", "AssessmentService"),
		users:            users,
		analyses:         analyses,
		learning:         learning,
		provider:         provider,
		locks:            locks,
		events:           events,
		alerts:           alerts,
		sentimentTimeout: time.Duration(envutil.Int("SENTIMENT_TIMEOUT_MS", 5000)) * time.Millisecond,
	}
}

func (s *assessmentService) RunDailyAssessment(ctx context.Context, in RunInput) (*DailyAssessment, error) {
	if in.UserID == uuid.Nil {
		return nil, dataerr.ValidationError("user id is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.users.GetByID(dbc, in.UserID); err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	date = wellness.DateOnly(date)
	metrics := in.Metrics.Normalized()
	if violations := in.Metrics.RangeViolations(); len(violations) > 0 {
		observability.ReportDataQualityErrors(ctx, s.log, "assessment.metrics", violations, map[string]any{
			"user_id": in.UserID.String(),
		})
	}

	// One run per user at a time: in-process always, cross-instance when
	// Redis is configured. A second concurrent submission conflicts
	// instead of double-writing the day.
	release, ok := s.locks.TryLock(in.UserID)
	if !ok {
		observability.Current().IncUserLockContention()
		return nil, dataerr.ConflictError("assessment already running for user")
	}
	defer release()

	if s.events != nil {
		acquired, err := s.events.AcquireUserLock(ctx, in.UserID, assessLockTTL)
		if err != nil {
			s.log.Warn("Redis user lock unavailable, proceeding on in-process lock", "user_id", in.UserID, "error", err)
		} else if !acquired {
			observability.Current().IncUserLockContention()
			return nil, dataerr.ConflictError("assessment already running for user")
		} else {
			defer func() {
				if err := s.events.ReleaseUserLock(context.WithoutCancel(ctx), in.UserID); err != nil {
					s.log.Warn("Releasing redis user lock failed", "user_id", in.UserID, "error", err)
				}
			}()
		}
	}

	workload := burnout.CalculateWorkload(metrics)

	var (
		sentiment burnout.SentimentResult
		prevRow   *types.BurnoutAnalysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sentiment = s.analyzeSentiment(gctx, in.Qualitative)
		return nil
	})
	g.Go(func() error {
		row, err := s.analyses.GetLatest(dbctx.Context{Ctx: gctx}, in.UserID)
		if err != nil {
			if errors.Is(err, dataerr.ErrNotFound) {
				return nil
			}
			return err
		}
		prevRow = row
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	analysis := burnout.Analyze(burnout.AnalyzeInput{
		UserID:       in.UserID,
		AnalysisDate: date,
		Metrics:      metrics,
		Workload:     workload,
		Sentiment:    sentiment,
		Qualitative:  in.Qualitative,
		Previous:     s.previousAnalysis(ctx, prevRow),
	})

	row, err := analysisRow(analysis)
	if err != nil {
		return nil, err
	}
	stored, fresh, err := s.persist(dbc, row, in.UserID, date)
	if err != nil {
		return nil, err
	}

	// Learning rides on the daily run but never blocks its result; a
	// failed pass is retried out-of-band by the profile_relearn job.
	patterns, profileUpdated, lerr := s.learning.RelearnProfile(ctx, in.UserID)
	if lerr != nil {
		s.log.Error("Learning pass failed, enqueueing relearn", "user_id", in.UserID, "error", lerr)
		if _, qerr := s.learning.EnqueueRelearn(ctx, in.UserID); qerr != nil {
			s.log.Error("Enqueue relearn failed", "user_id", in.UserID, "error", qerr)
		}
	}

	if fresh {
		s.fanOut(ctx, stored, prevRow)
	}

	return &DailyAssessment{
		Analysis:       stored,
		Patterns:       patterns,
		ProfileUpdated: profileUpdated,
	}, nil
}

// analyzeSentiment calls the provider under its own timeout. Any provider
// failure degrades to the neutral signal: qualitative text is optional
// enrichment and must never sink the day's assessment.
func (s *assessmentService) analyzeSentiment(ctx context.Context, q burnout.QualitativeInput) burnout.SentimentResult {
	sctx, cancel := context.WithTimeout(ctx, s.sentimentTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.provider.Analyze(sctx, q)
	if err != nil {
		reason := "provider_error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		s.log.Warn("Sentiment provider failed, using neutral fallback", "reason", reason, "error", err)
		observability.Current().IncSentimentFallback(reason)
		return burnout.NeutralSentiment("neutral_fallback")
	}
	observability.Current().ObserveSentiment(res.Source, time.Since(start))
	return res
}

// previousAnalysis converts the stored latest row into trend input. A row
// whose level no longer parses is reported and treated as absent, so one
// corrupt day cannot poison every later trend.
func (s *assessmentService) previousAnalysis(ctx context.Context, row *types.BurnoutAnalysis) *burnout.PreviousAnalysis {
	if row == nil {
		return nil
	}
	level, err := burnout.ParseLevel(row.Level)
	if err != nil {
		s.log.Warn("Stored analysis has invalid level, ignoring for trend", "analysis_id", row.ID, "level", row.Level)
		observability.ReportCorruptRecords(ctx, s.log, "assessment.previous", []string{row.ID.String()}, map[string]any{
			"user_id": row.UserID.String(),
			"level":   row.Level,
		})
		return nil
	}
	return &burnout.PreviousAnalysis{
		FinalScore:         row.FinalScore,
		Level:              level,
		DaysInCurrentLevel: row.DaysInCurrentLevel,
	}
}

// persist appends the day's row. A conflict on (user, date) means the day
// was already assessed, so the stored row is fetched and the run resumes
// idempotently; fresh reports whether this call inserted the row.
func (s *assessmentService) persist(dbc dbctx.Context, row *types.BurnoutAnalysis, userID uuid.UUID, date time.Time) (*types.BurnoutAnalysis, bool, error) {
	stored, err := s.analyses.Create(dbc, row)
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, dataerr.ErrConflict) {
		return nil, false, err
	}
	s.log.Info("Analysis already exists for date, resuming", "user_id", userID, "analysis_date", date.Format("2006-01-02"))
	existing, gerr := s.analyses.GetByUserAndDate(dbc, userID, date)
	if gerr != nil {
		return nil, false, gerr
	}
	return existing, false, nil
}

// fanOut emits the post-persist side effects: everything in here is
// best-effort and only logs on failure.
func (s *assessmentService) fanOut(ctx context.Context, stored *types.BurnoutAnalysis, prev *types.BurnoutAnalysis) {
	obs := observability.Current()
	obs.IncAssessment(stored.Level)

	if s.events != nil {
		ev := redisclient.AnalysisCompletedEvent{
			UserID:       stored.UserID,
			AnalysisDate: stored.AnalysisDate.Format("2006-01-02"),
			FinalScore:   stored.FinalScore,
			Level:        stored.Level,
			Trend:        stored.Trend,
		}
		if err := s.events.PublishAnalysisCompleted(ctx, ev); err != nil {
			s.log.Warn("Publishing analysis.completed failed", "user_id", stored.UserID, "error", err)
		}
	}

	if prev != nil && prev.Level != stored.Level {
		obs.IncLevelTransition(prev.Level, stored.Level)
		alert := kafkaclient.LevelTransitionAlert{
			UserID:       stored.UserID,
			AnalysisDate: stored.AnalysisDate.Format("2006-01-02"),
			FromLevel:    prev.Level,
			ToLevel:      stored.Level,
			FinalScore:   stored.FinalScore,
		}
		if err := s.alerts.PublishLevelTransition(ctx, alert); err != nil {
			s.log.Warn("Publishing level transition alert failed", "user_id", stored.UserID, "error", err)
		}
	}
}

// analysisRow flattens the engine result onto the storage model. Scores
// land in columns for querying; the full metrics, breakdown, and insights
// ride along as JSON.
func analysisRow(a burnout.Analysis) (*types.BurnoutAnalysis, error) {
	metricsJSON, err := json.Marshal(a.Metrics)
	if err != nil {
		return nil, fmt.Errorf("encode metrics: %w", err)
	}
	breakdownJSON, err := json.Marshal(a.Workload)
	if err != nil {
		return nil, fmt.Errorf("encode breakdown: %w", err)
	}
	insightsJSON, err := json.Marshal(a.Insights)
	if err != nil {
		return nil, fmt.Errorf("encode insights: %w", err)
	}

	return &types.BurnoutAnalysis{
		UserID:       a.UserID,
		AnalysisDate: a.AnalysisDate,

		FinalScore: a.FinalScore,
		Level:      string(a.Level),

		WorkloadScore: a.Workload.Total,
		TaskScore:     a.Workload.TaskScore,
		TimeScore:     a.Workload.TimeScore,
		MeetingScore:  a.Workload.MeetingScore,
		PatternScore:  a.Workload.PatternScore,

		SentimentScore:      a.Sentiment.Score,
		SentimentSource:     a.Sentiment.Source,
		SentimentAdjustment: a.SentimentAdjustment,

		Metrics:   datatypes.JSON(metricsJSON),
		Breakdown: datatypes.JSON(breakdownJSON),
		Insights:  datatypes.JSON(insightsJSON),

		PreviousScore:      a.Trend.PreviousScore,
		ScoreChange:        a.Trend.ScoreChange,
		Trend:              a.Trend.Direction,
		DaysInCurrentLevel: a.Trend.DaysInCurrentLevel,
	}, nil
}
