package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/emberwell/pulsecheck-backend/internal/burnout"
	kafkaclient "github.com/emberwell/pulsecheck-backend/internal/clients/kafka"
	redisclient "github.com/emberwell/pulsecheck-backend/internal/clients/redis"
	"github.com/emberwell/pulsecheck-backend/internal/data/dataerr"
	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"github.com/emberwell/pulsecheck-backend/internal/platform/dbctx"
	"github.com/emberwell/pulsecheck-backend/internal/platform/userlock"
)

type fakeUserRepo struct {
	known map[uuid.UUID]*types.User
}

func (f *fakeUserRepo) Create(dbc dbctx.Context, u *types.User) (*types.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if f.known == nil {
		f.known = map[uuid.UUID]*types.User{}
	}
	f.known[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	u, ok := f.known[userID]
	if !ok {
		return nil, dataerr.NotFoundError("user not found")
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	return nil, dataerr.NotFoundError("user not found")
}

func (f *fakeUserRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	return false, nil
}

type fakeLearningService struct {
	patterns   *burnout.LearnedPatterns
	updated    bool
	err        error
	enqueued   []uuid.UUID
	enqueueErr error
}

func (f *fakeLearningService) RelearnProfile(ctx context.Context, userID uuid.UUID) (*burnout.LearnedPatterns, bool, error) {
	return f.patterns, f.updated, f.err
}

func (f *fakeLearningService) EnqueueRelearn(ctx context.Context, userID uuid.UUID) (bool, error) {
	if f.enqueueErr != nil {
		return false, f.enqueueErr
	}
	f.enqueued = append(f.enqueued, userID)
	return true, nil
}

type fakeProvider struct {
	res     burnout.SentimentResult
	err     error
	gotText []string
}

func (f *fakeProvider) Analyze(ctx context.Context, in burnout.QualitativeInput) (burnout.SentimentResult, error) {
	f.gotText = in.Texts
	if f.err != nil {
		return burnout.SentimentResult{}, f.err
	}
	return f.res, nil
}

type fakeEvents struct {
	published  []redisclient.AnalysisCompletedEvent
	publishErr error
	lockDenied bool
	lockErr    error
	released   []uuid.UUID
}

func (f *fakeEvents) PublishAnalysisCompleted(ctx context.Context, ev redisclient.AnalysisCompletedEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, ev)
	return nil
}

func (f *fakeEvents) AcquireUserLock(ctx context.Context, userID uuid.UUID, ttl time.Duration) (bool, error) {
	if f.lockErr != nil {
		return false, f.lockErr
	}
	return !f.lockDenied, nil
}

func (f *fakeEvents) ReleaseUserLock(ctx context.Context, userID uuid.UUID) error {
	f.released = append(f.released, userID)
	return nil
}

func (f *fakeEvents) Ping(ctx context.Context) error { return nil }
func (f *fakeEvents) Close() error                   { return nil }

type fakeAlerts struct {
	alerts []kafkaclient.LevelTransitionAlert
}

func (f *fakeAlerts) PublishLevelTransition(ctx context.Context, alert kafkaclient.LevelTransitionAlert) error {
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeAlerts) Close() error { return nil }

type assessmentFixture struct {
	svc      *assessmentService
	users    *fakeUserRepo
	analyses *fakeAnalysisRepo
	learning *fakeLearningService
	provider *fakeProvider
	events   *fakeEvents
	alerts   *fakeAlerts
	userID   uuid.UUID
}

func newAssessmentFixture(t *testing.T) *assessmentFixture {
	t.Helper()
	userID := uuid.New()
	f := &assessmentFixture{
		users:    &fakeUserRepo{known: map[uuid.UUID]*types.User{}},
		analyses: &fakeAnalysisRepo{},
		learning: &fakeLearningService{},
		provider: &fakeProvider{},
		events:   &fakeEvents{},
		alerts:   &fakeAlerts{},
		userID:   userID,
	}
	f.users.known[userID] = &types.User{ID: userID, Email: "dev@example.com"}
	f.svc = &assessmentService{
		log:              svcLogger(t),
		users:            f.users,
		analyses:         f.analyses,
		learning:         f.learning,
		provider:         f.provider,
		locks:            userlock.NewKeyedMutex(),
		events:           f.events,
		alerts:           f.alerts,
		sentimentTimeout: 2 * time.Second,
	}
	return f
}

func TestRunDailyAssessmentHappyPath(t *testing.T) {
	f := newAssessmentFixture(t)
	f.provider.res = burnout.SentimentResult{Score: -1, Confidence: 1, Source: "lexicon"}
	f.learning.patterns = &burnout.LearnedPatterns{BaselineScore: 18, SampleDays: 9}
	f.learning.updated = true

	got, err := f.svc.RunDailyAssessment(context.Background(), RunInput{
		UserID:      f.userID,
		Metrics:     burnout.UserMetrics{},
		Qualitative: burnout.QualitativeInput{Texts: []string{"completely drained today"}},
	})
	if err != nil {
		t.Fatalf("RunDailyAssessment: %v", err)
	}

	a := got.Analysis
	if a == nil {
		t.Fatalf("RunDailyAssessment: nil analysis")
	}
	// Zero workload plus strongly negative sentiment at full confidence:
	// 0 + 10 = 10, still green.
	if a.FinalScore != 10 || a.Level != "green" {
		t.Fatalf("analysis: want=(10,green) got=(%d,%s)", a.FinalScore, a.Level)
	}
	if a.SentimentAdjustment != 10 || a.SentimentSource != "lexicon" {
		t.Fatalf("sentiment: want=(10,lexicon) got=(%d,%s)", a.SentimentAdjustment, a.SentimentSource)
	}
	if a.Trend != "stable" || a.DaysInCurrentLevel != 1 || a.PreviousScore != nil {
		t.Fatalf("first-ever trend: got trend=%s days=%d prev=%v", a.Trend, a.DaysInCurrentLevel, a.PreviousScore)
	}

	today := time.Now().UTC()
	wantDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if !a.AnalysisDate.Equal(wantDate) {
		t.Fatalf("analysis date: want=%v got=%v", wantDate, a.AnalysisDate)
	}

	if !got.ProfileUpdated || got.Patterns == nil || got.Patterns.BaselineScore != 18 {
		t.Fatalf("learning result: updated=%v patterns=%+v", got.ProfileUpdated, got.Patterns)
	}

	if len(f.events.published) != 1 {
		t.Fatalf("events published: want=1 got=%d", len(f.events.published))
	}
	ev := f.events.published[0]
	if ev.UserID != f.userID || ev.FinalScore != 10 || ev.Level != "green" {
		t.Fatalf("published event: %+v", ev)
	}
	if len(f.alerts.alerts) != 0 {
		t.Fatalf("level alerts without previous analysis: want=0 got=%d", len(f.alerts.alerts))
	}
	if len(f.events.released) != 1 {
		t.Fatalf("redis lock released: want=1 got=%d", len(f.events.released))
	}
}

func TestRunDailyAssessmentRejectsUnknownUser(t *testing.T) {
	f := newAssessmentFixture(t)

	if _, err := f.svc.RunDailyAssessment(context.Background(), RunInput{UserID: uuid.Nil}); !errors.Is(err, dataerr.ErrValidation) {
		t.Fatalf("nil user: want ErrValidation got %v", err)
	}
	if _, err := f.svc.RunDailyAssessment(context.Background(), RunInput{UserID: uuid.New()}); !errors.Is(err, dataerr.ErrNotFound) {
		t.Fatalf("unknown user: want ErrNotFound got %v", err)
	}
}

func TestRunDailyAssessmentSentimentFallback(t *testing.T) {
	f := newAssessmentFixture(t)
	f.provider.err = errors.New("provider offline")

	got, err := f.svc.RunDailyAssessment(context.Background(), RunInput{
		UserID:      f.userID,
		Qualitative: burnout.QualitativeInput{Texts: []string{"rough week"}},
	})
	if err != nil {
		t.Fatalf("RunDailyAssessment with failing provider: %v", err)
	}
	a := got.Analysis
	if a.SentimentAdjustment != 0 {
		t.Fatalf("fallback adjustment: want=0 got=%d", a.SentimentAdjustment)
	}
	if a.SentimentSource != "neutral_fallback" {
		t.Fatalf("fallback source: want=neutral_fallback got=%q", a.SentimentSource)
	}
}

func TestRunDailyAssessmentConflictResumes(t *testing.T) {
	f := newAssessmentFixture(t)
	existing := &types.BurnoutAnalysis{
		ID:           uuid.New(),
		UserID:       f.userID,
		AnalysisDate: time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		FinalScore:   42,
		Level:        "yellow",
		Trend:        "stable",
	}
	f.analyses.conflictSet = true
	f.analyses.byDate = existing

	got, err := f.svc.RunDailyAssessment(context.Background(), RunInput{
		UserID: f.userID,
		Date:   time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("RunDailyAssessment resume: %v", err)
	}
	if got.Analysis.ID != existing.ID || got.Analysis.FinalScore != 42 {
		t.Fatalf("resume: want stored row back, got %+v", got.Analysis)
	}
	if len(f.events.published) != 0 || len(f.alerts.alerts) != 0 {
		t.Fatalf("resume side effects: want none, got events=%d alerts=%d", len(f.events.published), len(f.alerts.alerts))
	}
}

func TestRunDailyAssessmentLevelTransitionAlert(t *testing.T) {
	f := newAssessmentFixture(t)
	f.analyses.latest = &types.BurnoutAnalysis{
		ID:                 uuid.New(),
		UserID:             f.userID,
		FinalScore:         20,
		Level:              "green",
		DaysInCurrentLevel: 3,
	}

	severe := burnout.UserMetrics{
		TotalActiveTasks: 15, OverdueTasks: 6, CompletionRate: 0.35,
		WorkHoursToday: 13, WorkHoursThisWeek: 65,
		WeekendWorkSessions: 5, LateNightWorkSessions: 5,
		MeetingsToday: 8, MeetingHoursToday: 6.5, BackToBackMeetings: 5,
		DaysWithoutBreaks: 12, ConsecutiveWorkDays: 18, WorkloadTrend: 0.8,
	}
	got, err := f.svc.RunDailyAssessment(context.Background(), RunInput{
		UserID:  f.userID,
		Metrics: severe,
	})
	if err != nil {
		t.Fatalf("RunDailyAssessment: %v", err)
	}

	a := got.Analysis
	if a.FinalScore != 100 || a.Level != "red" {
		t.Fatalf("severe day: want=(100,red) got=(%d,%s)", a.FinalScore, a.Level)
	}
	if a.Trend != "worsening" || a.DaysInCurrentLevel != 1 {
		t.Fatalf("severe day trend: want=(worsening,1) got=(%s,%d)", a.Trend, a.DaysInCurrentLevel)
	}

	if len(f.alerts.alerts) != 1 {
		t.Fatalf("level transition alerts: want=1 got=%d", len(f.alerts.alerts))
	}
	alert := f.alerts.alerts[0]
	if alert.FromLevel != "green" || alert.ToLevel != "red" || alert.FinalScore != 100 {
		t.Fatalf("alert: %+v", alert)
	}
	if alert.UserID != f.userID {
		t.Fatalf("alert user: want=%v got=%v", f.userID, alert.UserID)
	}
}

func TestRunDailyAssessmentInProcessLockContention(t *testing.T) {
	f := newAssessmentFixture(t)
	release, ok := f.svc.locks.TryLock(f.userID)
	if !ok {
		t.Fatalf("pre-lock failed")
	}
	defer release()

	_, err := f.svc.RunDailyAssessment(context.Background(), RunInput{UserID: f.userID})
	if !errors.Is(err, dataerr.ErrConflict) {
		t.Fatalf("locked user: want ErrConflict got %v", err)
	}
}

func TestRunDailyAssessmentRedisLockDenied(t *testing.T) {
	f := newAssessmentFixture(t)
	f.events.lockDenied = true

	_, err := f.svc.RunDailyAssessment(context.Background(), RunInput{UserID: f.userID})
	if !errors.Is(err, dataerr.ErrConflict) {
		t.Fatalf("denied redis lock: want ErrConflict got %v", err)
	}
	if len(f.events.released) != 0 {
		t.Fatalf("denied lock must not be released, got %d releases", len(f.events.released))
	}
}

func TestRunDailyAssessmentRedisLockErrorProceeds(t *testing.T) {
	f := newAssessmentFixture(t)
	f.events.lockErr = errors.New("redis down")

	got, err := f.svc.RunDailyAssessment(context.Background(), RunInput{UserID: f.userID})
	if err != nil {
		t.Fatalf("RunDailyAssessment with redis error: %v", err)
	}
	if got.Analysis == nil {
		t.Fatalf("RunDailyAssessment with redis error: nil analysis")
	}
}

func TestRunDailyAssessmentLearnerFailureEnqueuesRelearn(t *testing.T) {
	f := newAssessmentFixture(t)
	f.learning.err = errors.New("profile store timeout")

	got, err := f.svc.RunDailyAssessment(context.Background(), RunInput{UserID: f.userID})
	if err != nil {
		t.Fatalf("RunDailyAssessment with failing learner: %v", err)
	}
	if got.Patterns != nil || got.ProfileUpdated {
		t.Fatalf("failing learner: want=(nil,false) got=(%v,%v)", got.Patterns, got.ProfileUpdated)
	}
	if len(f.learning.enqueued) != 1 || f.learning.enqueued[0] != f.userID {
		t.Fatalf("relearn enqueue: want=[%v] got=%v", f.userID, f.learning.enqueued)
	}
	if got.Analysis == nil || len(f.analyses.created) != 1 {
		t.Fatalf("analysis must persist despite learner failure")
	}
}

func TestRunDailyAssessmentNormalizesMetricsBeforeScoring(t *testing.T) {
	f := newAssessmentFixture(t)

	got, err := f.svc.RunDailyAssessment(context.Background(), RunInput{
		UserID:  f.userID,
		Metrics: burnout.UserMetrics{TotalActiveTasks: -5, CompletionRate: 3.2},
	})
	if err != nil {
		t.Fatalf("RunDailyAssessment: %v", err)
	}
	// Negative task count clamps to zero signal; an out-of-range rate
	// clamps to 1.0 which scores nothing either.
	if got.Analysis.FinalScore != 0 || got.Analysis.Level != "green" {
		t.Fatalf("clamped metrics: want=(0,green) got=(%d,%s)", got.Analysis.FinalScore, got.Analysis.Level)
	}
}
